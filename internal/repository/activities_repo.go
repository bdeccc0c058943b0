package repository

import (
	"context"
	"time"

	"chronary-tracker/internal/domain"
)

// ActivitiesRepository activity Repository接口
type ActivitiesRepository interface {
	// CreateActivity 插入activity（repo负责生成activity_id；
	// Start由Service用服务器时钟填好，End保持nil即open状态）
	CreateActivity(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)

	// GetActivity 按(activity_id, user_id)获取
	GetActivity(ctx context.Context, userID, activityID string) (*domain.Activity, error)

	// ListActivities 用户全部activities，按start降序
	ListActivities(ctx context.Context, userID string) ([]*domain.Activity, error)

	// ListActivitiesAfter start >= after 的activities，按start降序
	ListActivitiesAfter(ctx context.Context, userID string, after time.Time) ([]*domain.Activity, error)

	// ListActivitiesInRange start在[start, end]（双闭区间）内的activities，
	// 按start降序；统计聚合也走这个查询
	ListActivitiesInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Activity, error)

	// UpdateActivity 部分更新；tag/subtag校验在Service层先行
	UpdateActivity(ctx context.Context, userID, activityID string, patch domain.ActivityPatch) (*domain.Activity, error)

	// CloseActivity 设置end（仅当end仍为NULL时生效）
	// 行不存在返回domain.ErrNotFound；已关闭返回domain.ErrAlreadyClosed
	CloseActivity(ctx context.Context, userID, activityID string, end time.Time) (*domain.Activity, error)

	// DeleteActivity 无条件删除（按user_id隔离），返回是否删除了行
	DeleteActivity(ctx context.Context, userID, activityID string) (bool, error)
}
