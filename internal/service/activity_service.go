package service

import (
	"context"
	"time"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/repository"

	"go.uber.org/zap"
)

// ActivityService activity生命周期（open -> closed）和按用户隔离的CRUD
// 状态机：创建即open（end=nil），close设置end后为终态，不能重新打开；
// closed的activity仍可编辑name/description/tag引用，删除不受状态限制
type ActivityService struct {
	activities repository.ActivitiesRepository
	guard      *Guard
	logger     *zap.Logger
	now        func() time.Time
}

// NewActivityService 创建activity服务
func NewActivityService(activities repository.ActivitiesRepository, guard *Guard, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activities: activities,
		guard:      guard,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 替换时钟（测试用）
func (s *ActivityService) WithClock(now func() time.Time) *ActivityService {
	s.now = now
	return s
}

// Create guard通过后插入，start取服务器时钟（UTC），end保持nil
func (s *ActivityService) Create(ctx context.Context, userID, tagID string, subtagID *string, name, description string) (*domain.Activity, error) {
	if err := s.guard.VerifyTagAndSubtag(ctx, userID, tagID, subtagID); err != nil {
		return nil, err
	}

	a, err := s.activities.CreateActivity(ctx, &domain.Activity{
		UserID:      userID,
		TagID:       tagID,
		SubtagID:    subtagID,
		Name:        name,
		Description: description,
		Start:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("activity opened",
		zap.String("user_id", userID), zap.String("activity_id", a.ActivityID))
	return a, nil
}

func (s *ActivityService) Get(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	return s.activities.GetActivity(ctx, userID, activityID)
}

func (s *ActivityService) List(ctx context.Context, userID string) ([]*domain.Activity, error) {
	return s.activities.ListActivities(ctx, userID)
}

func (s *ActivityService) ListAfter(ctx context.Context, userID string, after time.Time) ([]*domain.Activity, error) {
	return s.activities.ListActivitiesAfter(ctx, userID, after)
}

func (s *ActivityService) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Activity, error) {
	return s.activities.ListActivitiesInRange(ctx, userID, start, end)
}

// Update patch改动tag_id和/或subtag_id时，先对"结果对"重新做guard校验：
// 新tag + （patch给的subtag，或patch未给时activity现有的subtag）。
// 校验失败时不应用任何字段
func (s *ActivityService) Update(ctx context.Context, userID, activityID string, patch domain.ActivityPatch) (*domain.Activity, error) {
	if patch.TagID.Set && patch.TagID.Valid {
		existing, err := s.activities.GetActivity(ctx, userID, activityID)
		if err != nil {
			return nil, err
		}
		newSubtagID := existing.SubtagID
		if patch.SubtagID.Set {
			newSubtagID = patch.SubtagID.Ptr()
		}
		if err := s.guard.VerifyTagAndSubtag(ctx, userID, patch.TagID.Value, newSubtagID); err != nil {
			return nil, err
		}
	} else if patch.SubtagID.Set && patch.SubtagID.Valid {
		// 只换subtag：校验它挂在activity现有的tag下
		existing, err := s.activities.GetActivity(ctx, userID, activityID)
		if err != nil {
			return nil, err
		}
		if err := s.guard.VerifyTagAndSubtag(ctx, userID, existing.TagID, patch.SubtagID.Ptr()); err != nil {
			return nil, err
		}
	}

	return s.activities.UpdateActivity(ctx, userID, activityID, patch)
}

// Close 设置end=now；已关闭返回domain.ErrAlreadyClosed，
// 第一次close写入的end永远不会被覆盖
func (s *ActivityService) Close(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	a, err := s.activities.CloseActivity(ctx, userID, activityID, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("activity closed",
		zap.String("user_id", userID), zap.String("activity_id", a.ActivityID))
	return a, nil
}

func (s *ActivityService) Delete(ctx context.Context, userID, activityID string) (bool, error) {
	return s.activities.DeleteActivity(ctx, userID, activityID)
}
