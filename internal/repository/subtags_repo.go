package repository

import (
	"context"

	"chronary-tracker/internal/domain"
)

// SubtagsRepository 二级标签Repository接口
// subtag没有user_id列，按user_id的查询都通过父tag join
type SubtagsRepository interface {
	// CreateSubtag 创建subtag（repo负责生成subtag_id）
	// 父tag的ownership校验在Service层完成
	CreateSubtag(ctx context.Context, subtag *domain.Subtag) (*domain.Subtag, error)

	// GetSubtag 按subtag_id获取，要求父tag属于userID
	GetSubtag(ctx context.Context, userID, subtagID string) (*domain.Subtag, error)

	// GetSubtagForTag 按(subtag_id, tag_id)获取；AccessGuard用它校验
	// subtag确实挂在指定tag下
	GetSubtagForTag(ctx context.Context, tagID, subtagID string) (*domain.Subtag, error)

	// ListSubtagsForTag 列出某个tag下的subtags（tag须属于userID）
	ListSubtagsForTag(ctx context.Context, userID, tagID string) ([]*domain.Subtag, error)

	// ListSubtags 列出用户全部subtags（统计聚合解析名称时使用）
	ListSubtags(ctx context.Context, userID string) ([]*domain.Subtag, error)

	// UpdateSubtag 部分更新
	UpdateSubtag(ctx context.Context, userID, subtagID string, patch domain.SubtagPatch) (*domain.Subtag, error)

	// DeleteSubtag 删除subtag并级联删除引用它的activities
	DeleteSubtag(ctx context.Context, userID, subtagID string) (bool, error)
}
