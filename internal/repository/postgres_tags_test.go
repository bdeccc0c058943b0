package repository

import (
	"context"
	"regexp"
	"testing"

	"chronary-tracker/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestPostgresTags_CreateTag_ForeignKeyViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTagsRepository(db)
	tagTypeID := "tt-gone"

	// guard和写入之间tag type被并发删掉，外键冲突映射为ErrNotOwned
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags`)).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err = repo.CreateTag(context.Background(), &domain.Tag{
		UserID: "user-a", Name: "Coding", TagTypeID: &tagTypeID,
	})
	require.ErrorIs(t, err, domain.ErrNotOwned)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTags_GetTag_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTagsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT tag_id`)).
		WithArgs("user-a", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id", "user_id", "name", "color", "tag_type_id"}))

	_, err = repo.GetTag(context.Background(), "user-a", "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTags_GetTag_NullTagType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTagsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT tag_id`)).
		WithArgs("user-a", "tag-1").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id", "user_id", "name", "color", "tag_type_id"}).
			AddRow("tag-1", "user-a", "Coding", "#00ff00", nil))

	tag, err := repo.GetTag(context.Background(), "user-a", "tag-1")
	require.NoError(t, err)
	require.Nil(t, tag.TagTypeID)
	require.Equal(t, "#00ff00", tag.Color)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTags_DeleteTag_CascadesInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTagsRepository(db)

	// activities -> subtags -> tag，同一事务内按序删除
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM activities`)).
		WithArgs("user-a", "tag-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subtags`)).
		WithArgs("user-a", "tag-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags`)).
		WithArgs("user-a", "tag-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.DeleteTag(context.Background(), "user-a", "tag-1")
	require.NoError(t, err)
	require.True(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTags_DeleteTag_NotOwnedDeletesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTagsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM activities`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subtags`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	deleted, err := repo.DeleteTag(context.Background(), "user-b", "tag-1")
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTags_UpdateTag_ClearTagType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTagsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tags SET tag_type_id = $3`)).
		WithArgs("user-a", "tag-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT tag_id`)).
		WillReturnRows(sqlmock.NewRows([]string{"tag_id", "user_id", "name", "color", "tag_type_id"}).
			AddRow("tag-1", "user-a", "Coding", "", nil))

	tag, err := repo.UpdateTag(context.Background(), "user-a", "tag-1", domain.TagPatch{
		TagTypeID: domain.Null[string](),
	})
	require.NoError(t, err)
	require.Nil(t, tag.TagTypeID)
	require.NoError(t, mock.ExpectationsWereMet())
}
