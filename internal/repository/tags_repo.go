package repository

import (
	"context"

	"chronary-tracker/internal/domain"
)

// TagsRepository 标签Repository接口
// 注意：tag_type_id的ownership校验在Service层（AccessGuard），
// Repository只负责数据访问；外键约束是并发删除时的兜底
type TagsRepository interface {
	// CreateTag 创建tag（repo负责生成tag_id）
	CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)

	// GetTag 按(tag_id, user_id)获取；用于AccessGuard的ownership查询
	GetTag(ctx context.Context, userID, tagID string) (*domain.Tag, error)

	// ListTags 列出用户的全部tags
	ListTags(ctx context.Context, userID string) ([]*domain.Tag, error)

	// UpdateTag 部分更新；tag_type_id显式传null时清除归属
	UpdateTag(ctx context.Context, userID, tagID string, patch domain.TagPatch) (*domain.Tag, error)

	// DeleteTag 删除tag并级联删除其subtags和引用它的activities
	DeleteTag(ctx context.Context, userID, tagID string) (bool, error)
}
