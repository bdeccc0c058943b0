package service

import (
	"context"
	"errors"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/repository"
)

// Guard tag/subtag归属校验
// 在每次activity create/update和subtag create之前同步调用；
// 只读不写。校验与后续写入不在同一事务，并发删除由DB外键兜底
type Guard struct {
	tags    repository.TagsRepository
	subtags repository.SubtagsRepository
}

func NewGuard(tags repository.TagsRepository, subtags repository.SubtagsRepository) *Guard {
	return &Guard{tags: tags, subtags: subtags}
}

// VerifyTagAndSubtag 校验tag属于userID；subtagID非nil时再校验subtag挂在该tag下
// 任一条件不满足返回domain.ErrNotOwned
func (g *Guard) VerifyTagAndSubtag(ctx context.Context, userID, tagID string, subtagID *string) error {
	if _, err := g.tags.GetTag(ctx, userID, tagID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotOwned
		}
		return err
	}

	if subtagID != nil {
		if _, err := g.subtags.GetSubtagForTag(ctx, tagID, *subtagID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotOwned
			}
			return err
		}
	}
	return nil
}
