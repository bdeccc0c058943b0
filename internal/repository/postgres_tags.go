package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"chronary-tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresTagsRepository 标签Repository实现
type PostgresTagsRepository struct {
	db *sql.DB
}

// NewPostgresTagsRepository 创建标签Repository
func NewPostgresTagsRepository(db *sql.DB) *PostgresTagsRepository {
	return &PostgresTagsRepository{db: db}
}

// 确保实现了接口
var _ TagsRepository = (*PostgresTagsRepository)(nil)

// isForeignKeyViolation 外键冲突（class 23503）
// Guard检查与写入不在同一事务里，引用的行可能在两步之间被并发删除，
// 外键约束兜底后映射为ErrNotOwned
func isForeignKeyViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23503"
	}
	return false
}

func (r *PostgresTagsRepository) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	created := *tag
	created.TagID = uuid.NewString()

	query := `
		INSERT INTO tags (tag_id, user_id, name, color, tag_type_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		created.TagID, created.UserID, created.Name, created.Color, created.TagTypeID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotOwned
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &created, nil
}

func (r *PostgresTagsRepository) GetTag(ctx context.Context, userID, tagID string) (*domain.Tag, error) {
	query := `
		SELECT tag_id, user_id, name, color, tag_type_id
		FROM tags
		WHERE user_id = $1 AND tag_id = $2
	`

	var tag domain.Tag
	var tagTypeID sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID, tagID).Scan(
		&tag.TagID, &tag.UserID, &tag.Name, &tag.Color, &tagTypeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	if tagTypeID.Valid {
		tag.TagTypeID = &tagTypeID.String
	}
	return &tag, nil
}

func (r *PostgresTagsRepository) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	query := `
		SELECT tag_id, user_id, name, color, tag_type_id
		FROM tags
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var items []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		var tagTypeID sql.NullString
		if err := rows.Scan(&tag.TagID, &tag.UserID, &tag.Name, &tag.Color, &tagTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if tagTypeID.Valid {
			tag.TagTypeID = &tagTypeID.String
		}
		items = append(items, &tag)
	}
	return items, rows.Err()
}

func (r *PostgresTagsRepository) UpdateTag(ctx context.Context, userID, tagID string, patch domain.TagPatch) (*domain.Tag, error) {
	// 动态构建SET子句，只更新patch中显式出现的字段
	set := []string{}
	args := []any{userID, tagID}
	argIdx := 3

	if patch.Name.Set && patch.Name.Valid {
		set = append(set, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, patch.Name.Value)
		argIdx++
	}
	if patch.Color.Set && patch.Color.Valid {
		set = append(set, fmt.Sprintf("color = $%d", argIdx))
		args = append(args, patch.Color.Value)
		argIdx++
	}
	if patch.TagTypeID.Set {
		// 显式null => 清除归属
		set = append(set, fmt.Sprintf("tag_type_id = $%d", argIdx))
		args = append(args, patch.TagTypeID.Ptr())
		argIdx++
	}

	if len(set) > 0 {
		query := fmt.Sprintf(`
			UPDATE tags SET %s
			WHERE user_id = $1 AND tag_id = $2
		`, strings.Join(set, ", "))
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, domain.ErrNotOwned
			}
			return nil, fmt.Errorf("failed to update tag: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, domain.ErrNotFound
		}
	}
	return r.GetTag(ctx, userID, tagID)
}

// DeleteTag 级联删除subtags和引用该tag（或其subtags）的activities
func (r *PostgresTagsRepository) DeleteTag(ctx context.Context, userID, tagID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 子表删除同样按user_id限定，防止越权级联
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM activities
		WHERE tag_id IN (SELECT tag_id FROM tags WHERE user_id = $1 AND tag_id = $2)
	`, userID, tagID); err != nil {
		return false, fmt.Errorf("failed to cascade activities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM subtags
		WHERE tag_id IN (SELECT tag_id FROM tags WHERE user_id = $1 AND tag_id = $2)
	`, userID, tagID); err != nil {
		return false, fmt.Errorf("failed to cascade subtags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM tags WHERE user_id = $1 AND tag_id = $2
	`, userID, tagID)
	if err != nil {
		return false, fmt.Errorf("failed to delete tag: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}
