package service

import (
	"context"
	"errors"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/repository"

	"go.uber.org/zap"
)

// TaxonomyService tag type / tag / subtag 的生命周期管理
// 所有操作按user_id隔离；引用父实体的创建先做ownership校验
type TaxonomyService struct {
	tagTypes repository.TagTypesRepository
	tags     repository.TagsRepository
	subtags  repository.SubtagsRepository
	guard    *Guard
	logger   *zap.Logger
}

// NewTaxonomyService 创建taxonomy服务
func NewTaxonomyService(
	tagTypes repository.TagTypesRepository,
	tags repository.TagsRepository,
	subtags repository.SubtagsRepository,
	guard *Guard,
	logger *zap.Logger,
) *TaxonomyService {
	return &TaxonomyService{
		tagTypes: tagTypes,
		tags:     tags,
		subtags:  subtags,
		guard:    guard,
		logger:   logger,
	}
}

// ---- tag types ----

func (s *TaxonomyService) CreateTagType(ctx context.Context, userID, name string) (*domain.TagType, error) {
	tt, err := s.tagTypes.CreateTagType(ctx, &domain.TagType{UserID: userID, Name: name})
	if err != nil {
		return nil, err
	}
	s.logger.Info("tag type created",
		zap.String("user_id", userID), zap.String("tag_type_id", tt.TagTypeID))
	return tt, nil
}

func (s *TaxonomyService) GetTagType(ctx context.Context, userID, tagTypeID string) (*domain.TagType, error) {
	return s.tagTypes.GetTagType(ctx, userID, tagTypeID)
}

func (s *TaxonomyService) ListTagTypes(ctx context.Context, userID string) ([]*domain.TagType, error) {
	return s.tagTypes.ListTagTypes(ctx, userID)
}

func (s *TaxonomyService) UpdateTagType(ctx context.Context, userID, tagTypeID string, patch domain.TagTypePatch) (*domain.TagType, error) {
	return s.tagTypes.UpdateTagType(ctx, userID, tagTypeID, patch)
}

func (s *TaxonomyService) DeleteTagType(ctx context.Context, userID, tagTypeID string) (bool, error) {
	deleted, err := s.tagTypes.DeleteTagType(ctx, userID, tagTypeID)
	if err == nil && deleted {
		s.logger.Info("tag type deleted (cascade)",
			zap.String("user_id", userID), zap.String("tag_type_id", tagTypeID))
	}
	return deleted, err
}

// ---- tags ----

// CreateTag tagTypeID非nil时先校验tag type属于userID
func (s *TaxonomyService) CreateTag(ctx context.Context, userID, name, color string, tagTypeID *string) (*domain.Tag, error) {
	if tagTypeID != nil {
		if _, err := s.tagTypes.GetTagType(ctx, userID, *tagTypeID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotOwned
			}
			return nil, err
		}
	}
	tag, err := s.tags.CreateTag(ctx, &domain.Tag{
		UserID:    userID,
		Name:      name,
		Color:     color,
		TagTypeID: tagTypeID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("tag created",
		zap.String("user_id", userID), zap.String("tag_id", tag.TagID))
	return tag, nil
}

func (s *TaxonomyService) GetTag(ctx context.Context, userID, tagID string) (*domain.Tag, error) {
	return s.tags.GetTag(ctx, userID, tagID)
}

func (s *TaxonomyService) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	return s.tags.ListTags(ctx, userID)
}

// UpdateTag patch里出现非null的tag_type_id时先校验其归属
func (s *TaxonomyService) UpdateTag(ctx context.Context, userID, tagID string, patch domain.TagPatch) (*domain.Tag, error) {
	if patch.TagTypeID.Set && patch.TagTypeID.Valid {
		if _, err := s.tagTypes.GetTagType(ctx, userID, patch.TagTypeID.Value); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotOwned
			}
			return nil, err
		}
	}
	return s.tags.UpdateTag(ctx, userID, tagID, patch)
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, userID, tagID string) (bool, error) {
	deleted, err := s.tags.DeleteTag(ctx, userID, tagID)
	if err == nil && deleted {
		s.logger.Info("tag deleted (cascade)",
			zap.String("user_id", userID), zap.String("tag_id", tagID))
	}
	return deleted, err
}

// ---- subtags ----

// CreateSubtag 父tag必须属于userID
func (s *TaxonomyService) CreateSubtag(ctx context.Context, userID, tagID, name string) (*domain.Subtag, error) {
	if err := s.guard.VerifyTagAndSubtag(ctx, userID, tagID, nil); err != nil {
		return nil, err
	}
	st, err := s.subtags.CreateSubtag(ctx, &domain.Subtag{TagID: tagID, Name: name})
	if err != nil {
		return nil, err
	}
	s.logger.Info("subtag created",
		zap.String("user_id", userID), zap.String("subtag_id", st.SubtagID))
	return st, nil
}

func (s *TaxonomyService) GetSubtag(ctx context.Context, userID, subtagID string) (*domain.Subtag, error) {
	return s.subtags.GetSubtag(ctx, userID, subtagID)
}

func (s *TaxonomyService) ListSubtagsForTag(ctx context.Context, userID, tagID string) ([]*domain.Subtag, error) {
	return s.subtags.ListSubtagsForTag(ctx, userID, tagID)
}

func (s *TaxonomyService) UpdateSubtag(ctx context.Context, userID, subtagID string, patch domain.SubtagPatch) (*domain.Subtag, error) {
	return s.subtags.UpdateSubtag(ctx, userID, subtagID, patch)
}

func (s *TaxonomyService) DeleteSubtag(ctx context.Context, userID, subtagID string) (bool, error) {
	deleted, err := s.subtags.DeleteSubtag(ctx, userID, subtagID)
	if err == nil && deleted {
		s.logger.Info("subtag deleted (cascade)",
			zap.String("user_id", userID), zap.String("subtag_id", subtagID))
	}
	return deleted, err
}
