package repository

import (
	"context"

	"chronary-tracker/internal/domain"
)

// TagTypesRepository tag type Repository接口
// 使用强类型领域模型，不使用map[string]any
// 所有操作按user_id隔离；查不到的行返回domain.ErrNotFound
type TagTypesRepository interface {
	// CreateTagType 创建tag type（repo负责生成tag_type_id）
	CreateTagType(ctx context.Context, tagType *domain.TagType) (*domain.TagType, error)

	// GetTagType 按(tag_type_id, user_id)获取
	GetTagType(ctx context.Context, userID, tagTypeID string) (*domain.TagType, error)

	// ListTagTypes 列出用户的全部tag type
	ListTagTypes(ctx context.Context, userID string) ([]*domain.TagType, error)

	// UpdateTagType 部分更新（只应用patch中Set的字段）
	UpdateTagType(ctx context.Context, userID, tagTypeID string, patch domain.TagTypePatch) (*domain.TagType, error)

	// DeleteTagType 删除tag type并级联删除其tags（以及tags的subtags/activities）
	// 返回是否删除了行
	DeleteTagType(ctx context.Context, userID, tagTypeID string) (bool, error)
}
