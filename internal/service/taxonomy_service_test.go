package service

import (
	"context"
	"testing"

	"chronary-tracker/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestTaxonomyService_CreateTag_TagTypeOwnership(t *testing.T) {
	_, _, taxonomy, _, _ := newTestFixture()
	ctx := context.Background()

	tt, err := taxonomy.CreateTagType(ctx, "user-a", "Work")
	require.NoError(t, err)

	// 同一用户的tag type可用
	tag, err := taxonomy.CreateTag(ctx, "user-a", "Coding", "#00ff00", &tt.TagTypeID)
	require.NoError(t, err)
	require.NotNil(t, tag.TagTypeID)
	require.Equal(t, tt.TagTypeID, *tag.TagTypeID)

	// 别人的tag type不可用
	_, err = taxonomy.CreateTag(ctx, "user-b", "Coding", "#00ff00", &tt.TagTypeID)
	require.ErrorIs(t, err, domain.ErrNotOwned)
}

func TestTaxonomyService_UpdateTag_PartialAndClear(t *testing.T) {
	_, _, taxonomy, _, _ := newTestFixture()
	ctx := context.Background()

	tt, err := taxonomy.CreateTagType(ctx, "user-a", "Work")
	require.NoError(t, err)
	tag, err := taxonomy.CreateTag(ctx, "user-a", "Coding", "#00ff00", &tt.TagTypeID)
	require.NoError(t, err)

	// 只改name：color和tag_type_id不动
	updated, err := taxonomy.UpdateTag(ctx, "user-a", tag.TagID, domain.TagPatch{
		Name: domain.Some("Programming"),
	})
	require.NoError(t, err)
	require.Equal(t, "Programming", updated.Name)
	require.Equal(t, "#00ff00", updated.Color)
	require.NotNil(t, updated.TagTypeID)

	// 显式null清除tag_type_id
	updated, err = taxonomy.UpdateTag(ctx, "user-a", tag.TagID, domain.TagPatch{
		TagTypeID: domain.Null[string](),
	})
	require.NoError(t, err)
	require.Nil(t, updated.TagTypeID)

	// 不存在的tag
	_, err = taxonomy.UpdateTag(ctx, "user-a", "missing", domain.TagPatch{
		Name: domain.Some("x"),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaxonomyService_DeleteTag_Cascades(t *testing.T) {
	_, _, taxonomy, activities, _ := newTestFixture()
	ctx := context.Background()

	tag, err := taxonomy.CreateTag(ctx, "user-a", "Coding", "", nil)
	require.NoError(t, err)
	subtag, err := taxonomy.CreateSubtag(ctx, "user-a", tag.TagID, "Backend")
	require.NoError(t, err)

	withSubtag, err := activities.Create(ctx, "user-a", tag.TagID, &subtag.SubtagID, "api work", "")
	require.NoError(t, err)
	withoutSubtag, err := activities.Create(ctx, "user-a", tag.TagID, nil, "misc", "")
	require.NoError(t, err)

	deleted, err := taxonomy.DeleteTag(ctx, "user-a", tag.TagID)
	require.NoError(t, err)
	require.True(t, deleted)

	// subtag和两条activity全部级联删除
	_, err = taxonomy.GetSubtag(ctx, "user-a", subtag.SubtagID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = activities.Get(ctx, "user-a", withSubtag.ActivityID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = activities.Get(ctx, "user-a", withoutSubtag.ActivityID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaxonomyService_DeleteTagType_CascadesTransitively(t *testing.T) {
	_, _, taxonomy, activities, _ := newTestFixture()
	ctx := context.Background()

	tt, err := taxonomy.CreateTagType(ctx, "user-a", "Work")
	require.NoError(t, err)
	tag, err := taxonomy.CreateTag(ctx, "user-a", "Coding", "", &tt.TagTypeID)
	require.NoError(t, err)
	subtag, err := taxonomy.CreateSubtag(ctx, "user-a", tag.TagID, "Backend")
	require.NoError(t, err)
	a, err := activities.Create(ctx, "user-a", tag.TagID, &subtag.SubtagID, "api work", "")
	require.NoError(t, err)

	// 无关的tag不受影响
	other, err := taxonomy.CreateTag(ctx, "user-a", "Reading", "", nil)
	require.NoError(t, err)

	deleted, err := taxonomy.DeleteTagType(ctx, "user-a", tt.TagTypeID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = taxonomy.GetTag(ctx, "user-a", tag.TagID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = taxonomy.GetSubtag(ctx, "user-a", subtag.SubtagID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = activities.Get(ctx, "user-a", a.ActivityID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := taxonomy.GetTag(ctx, "user-a", other.TagID)
	require.NoError(t, err)
	require.Equal(t, "Reading", got.Name)
}

func TestTaxonomyService_DeleteSubtag_CascadesActivities(t *testing.T) {
	_, _, taxonomy, activities, _ := newTestFixture()
	ctx := context.Background()

	tag, err := taxonomy.CreateTag(ctx, "user-a", "Coding", "", nil)
	require.NoError(t, err)
	subtag, err := taxonomy.CreateSubtag(ctx, "user-a", tag.TagID, "Backend")
	require.NoError(t, err)

	tagged, err := activities.Create(ctx, "user-a", tag.TagID, &subtag.SubtagID, "api work", "")
	require.NoError(t, err)
	plain, err := activities.Create(ctx, "user-a", tag.TagID, nil, "misc", "")
	require.NoError(t, err)

	deleted, err := taxonomy.DeleteSubtag(ctx, "user-a", subtag.SubtagID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = activities.Get(ctx, "user-a", tagged.ActivityID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// subtag为空的activity保留
	_, err = activities.Get(ctx, "user-a", plain.ActivityID)
	require.NoError(t, err)
}

func TestTaxonomyService_CreateSubtag_RequiresOwnedTag(t *testing.T) {
	_, _, taxonomy, _, _ := newTestFixture()
	ctx := context.Background()

	tag, err := taxonomy.CreateTag(ctx, "user-a", "Coding", "", nil)
	require.NoError(t, err)

	_, err = taxonomy.CreateSubtag(ctx, "user-b", tag.TagID, "Backend")
	require.ErrorIs(t, err, domain.ErrNotOwned)
}
