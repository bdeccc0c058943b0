package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"chronary-tracker/internal/domain"

	"github.com/google/uuid"
)

// MemoryRepository 用于DB未就绪时的联测和单元测试
// - 四类实体放在同一个struct里，级联删除和join查询才能闭环
// - 按user_id隔离，IDs使用uuid
// - 互斥锁串行化guard+write，内存模式下不存在TOCTOU竞争
type MemoryRepository struct {
	mu sync.RWMutex

	tagTypes   map[string]*domain.TagType  // tagTypeID -> TagType
	tags       map[string]*domain.Tag      // tagID -> Tag
	subtags    map[string]*domain.Subtag   // subtagID -> Subtag
	activities map[string]*domain.Activity // activityID -> Activity
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tagTypes:   map[string]*domain.TagType{},
		tags:       map[string]*domain.Tag{},
		subtags:    map[string]*domain.Subtag{},
		activities: map[string]*domain.Activity{},
	}
}

// 确保实现了全部接口
var (
	_ TagTypesRepository   = (*MemoryRepository)(nil)
	_ TagsRepository       = (*MemoryRepository)(nil)
	_ SubtagsRepository    = (*MemoryRepository)(nil)
	_ ActivitiesRepository = (*MemoryRepository)(nil)
)

// ---- tag types ----

func (r *MemoryRepository) CreateTagType(_ context.Context, tagType *domain.TagType) (*domain.TagType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *tagType
	created.TagTypeID = uuid.NewString()
	r.tagTypes[created.TagTypeID] = &created

	out := created
	return &out, nil
}

func (r *MemoryRepository) GetTagType(_ context.Context, userID, tagTypeID string) (*domain.TagType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tt, ok := r.tagTypes[tagTypeID]
	if !ok || tt.UserID != userID {
		return nil, domain.ErrNotFound
	}
	out := *tt
	return &out, nil
}

func (r *MemoryRepository) ListTagTypes(_ context.Context, userID string) ([]*domain.TagType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.TagType
	for _, tt := range r.tagTypes {
		if tt.UserID == userID {
			out := *tt
			items = append(items, &out)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryRepository) UpdateTagType(_ context.Context, userID, tagTypeID string, patch domain.TagTypePatch) (*domain.TagType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt, ok := r.tagTypes[tagTypeID]
	if !ok || tt.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if patch.Name.Set && patch.Name.Valid {
		tt.Name = patch.Name.Value
	}
	out := *tt
	return &out, nil
}

func (r *MemoryRepository) DeleteTagType(_ context.Context, userID, tagTypeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tt, ok := r.tagTypes[tagTypeID]
	if !ok || tt.UserID != userID {
		return false, nil
	}
	for tagID, tag := range r.tags {
		if tag.UserID == userID && tag.TagTypeID != nil && *tag.TagTypeID == tagTypeID {
			r.deleteTagLocked(tagID)
		}
	}
	delete(r.tagTypes, tagTypeID)
	return true, nil
}

// ---- tags ----

func (r *MemoryRepository) CreateTag(_ context.Context, tag *domain.Tag) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *tag
	created.TagID = uuid.NewString()
	r.tags[created.TagID] = &created

	out := created
	return &out, nil
}

func (r *MemoryRepository) GetTag(_ context.Context, userID, tagID string) (*domain.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getTagLocked(userID, tagID)
}

func (r *MemoryRepository) getTagLocked(userID, tagID string) (*domain.Tag, error) {
	tag, ok := r.tags[tagID]
	if !ok || tag.UserID != userID {
		return nil, domain.ErrNotFound
	}
	out := *tag
	return &out, nil
}

func (r *MemoryRepository) ListTags(_ context.Context, userID string) ([]*domain.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.Tag
	for _, tag := range r.tags {
		if tag.UserID == userID {
			out := *tag
			items = append(items, &out)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryRepository) UpdateTag(_ context.Context, userID, tagID string, patch domain.TagPatch) (*domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, ok := r.tags[tagID]
	if !ok || tag.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if patch.Name.Set && patch.Name.Valid {
		tag.Name = patch.Name.Value
	}
	if patch.Color.Set && patch.Color.Valid {
		tag.Color = patch.Color.Value
	}
	if patch.TagTypeID.Set {
		tag.TagTypeID = patch.TagTypeID.Ptr()
	}
	out := *tag
	return &out, nil
}

func (r *MemoryRepository) DeleteTag(_ context.Context, userID, tagID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, ok := r.tags[tagID]
	if !ok || tag.UserID != userID {
		return false, nil
	}
	r.deleteTagLocked(tagID)
	return true, nil
}

func (r *MemoryRepository) deleteTagLocked(tagID string) {
	for activityID, a := range r.activities {
		if a.TagID == tagID {
			delete(r.activities, activityID)
		}
	}
	for subtagID, st := range r.subtags {
		if st.TagID == tagID {
			delete(r.subtags, subtagID)
		}
	}
	delete(r.tags, tagID)
}

// ---- subtags ----

func (r *MemoryRepository) CreateSubtag(_ context.Context, subtag *domain.Subtag) (*domain.Subtag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[subtag.TagID]; !ok {
		return nil, domain.ErrNotOwned
	}

	created := *subtag
	created.SubtagID = uuid.NewString()
	r.subtags[created.SubtagID] = &created

	out := created
	return &out, nil
}

func (r *MemoryRepository) GetSubtag(_ context.Context, userID, subtagID string) (*domain.Subtag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.subtags[subtagID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if tag, ok := r.tags[st.TagID]; !ok || tag.UserID != userID {
		return nil, domain.ErrNotFound
	}
	out := *st
	return &out, nil
}

func (r *MemoryRepository) GetSubtagForTag(_ context.Context, tagID, subtagID string) (*domain.Subtag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.subtags[subtagID]
	if !ok || st.TagID != tagID {
		return nil, domain.ErrNotFound
	}
	out := *st
	return &out, nil
}

func (r *MemoryRepository) ListSubtagsForTag(_ context.Context, userID, tagID string) ([]*domain.Subtag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if tag, ok := r.tags[tagID]; !ok || tag.UserID != userID {
		return nil, nil
	}
	var items []*domain.Subtag
	for _, st := range r.subtags {
		if st.TagID == tagID {
			out := *st
			items = append(items, &out)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryRepository) ListSubtags(_ context.Context, userID string) ([]*domain.Subtag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.Subtag
	for _, st := range r.subtags {
		if tag, ok := r.tags[st.TagID]; ok && tag.UserID == userID {
			out := *st
			items = append(items, &out)
		}
	}
	return items, nil
}

func (r *MemoryRepository) UpdateSubtag(_ context.Context, userID, subtagID string, patch domain.SubtagPatch) (*domain.Subtag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.subtags[subtagID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if tag, ok := r.tags[st.TagID]; !ok || tag.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if patch.Name.Set && patch.Name.Valid {
		st.Name = patch.Name.Value
	}
	out := *st
	return &out, nil
}

func (r *MemoryRepository) DeleteSubtag(_ context.Context, userID, subtagID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.subtags[subtagID]
	if !ok {
		return false, nil
	}
	if tag, ok := r.tags[st.TagID]; !ok || tag.UserID != userID {
		return false, nil
	}
	for activityID, a := range r.activities {
		if a.SubtagID != nil && *a.SubtagID == subtagID {
			delete(r.activities, activityID)
		}
	}
	delete(r.subtags, subtagID)
	return true, nil
}

// ---- activities ----

func (r *MemoryRepository) CreateActivity(_ context.Context, activity *domain.Activity) (*domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tag, ok := r.tags[activity.TagID]; !ok || tag.UserID != activity.UserID {
		return nil, domain.ErrNotOwned
	}
	if activity.SubtagID != nil {
		st, ok := r.subtags[*activity.SubtagID]
		if !ok || st.TagID != activity.TagID {
			return nil, domain.ErrNotOwned
		}
	}

	created := *activity
	created.ActivityID = uuid.NewString()
	r.activities[created.ActivityID] = &created

	out := created
	return &out, nil
}

func (r *MemoryRepository) GetActivity(_ context.Context, userID, activityID string) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[activityID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (r *MemoryRepository) ListActivities(_ context.Context, userID string) ([]*domain.Activity, error) {
	return r.listActivities(userID, func(*domain.Activity) bool { return true })
}

func (r *MemoryRepository) ListActivitiesAfter(_ context.Context, userID string, after time.Time) ([]*domain.Activity, error) {
	return r.listActivities(userID, func(a *domain.Activity) bool {
		return !a.Start.Before(after)
	})
}

func (r *MemoryRepository) ListActivitiesInRange(_ context.Context, userID string, start, end time.Time) ([]*domain.Activity, error) {
	return r.listActivities(userID, func(a *domain.Activity) bool {
		return !a.Start.Before(start) && !a.Start.After(end)
	})
}

func (r *MemoryRepository) listActivities(userID string, match func(*domain.Activity) bool) ([]*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.Activity
	for _, a := range r.activities {
		if a.UserID == userID && match(a) {
			out := *a
			items = append(items, &out)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Start.After(items[j].Start) })
	return items, nil
}

func (r *MemoryRepository) UpdateActivity(_ context.Context, userID, activityID string, patch domain.ActivityPatch) (*domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activityID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrNotFound
	}

	// 锁内对结果引用对做与CreateActivity相同的校验，
	// 和Postgres实现的外键兜底保持一致的语义
	newTagID := a.TagID
	if patch.TagID.Set && patch.TagID.Valid {
		newTagID = patch.TagID.Value
	}
	newSubtagID := a.SubtagID
	if patch.SubtagID.Set {
		newSubtagID = patch.SubtagID.Ptr()
	}
	if tag, ok := r.tags[newTagID]; !ok || tag.UserID != userID {
		return nil, domain.ErrNotOwned
	}
	if newSubtagID != nil {
		st, ok := r.subtags[*newSubtagID]
		if !ok || st.TagID != newTagID {
			return nil, domain.ErrNotOwned
		}
	}

	if patch.Name.Set && patch.Name.Valid {
		a.Name = patch.Name.Value
	}
	if patch.Description.Set && patch.Description.Valid {
		a.Description = patch.Description.Value
	}
	a.TagID = newTagID
	a.SubtagID = newSubtagID
	out := *a
	return &out, nil
}

func (r *MemoryRepository) CloseActivity(_ context.Context, userID, activityID string, end time.Time) (*domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activityID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if a.End != nil {
		return nil, domain.ErrAlreadyClosed
	}
	t := end
	a.End = &t
	out := *a
	return &out, nil
}

func (r *MemoryRepository) DeleteActivity(_ context.Context, userID, activityID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activityID]
	if !ok || a.UserID != userID {
		return false, nil
	}
	delete(r.activities, activityID)
	return true, nil
}
