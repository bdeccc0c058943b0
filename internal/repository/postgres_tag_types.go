package repository

import (
	"context"
	"database/sql"
	"fmt"

	"chronary-tracker/internal/domain"

	"github.com/google/uuid"
)

// PostgresTagTypesRepository tag type Repository实现
type PostgresTagTypesRepository struct {
	db *sql.DB
}

// NewPostgresTagTypesRepository 创建tag type Repository
func NewPostgresTagTypesRepository(db *sql.DB) *PostgresTagTypesRepository {
	return &PostgresTagTypesRepository{db: db}
}

// 确保实现了接口
var _ TagTypesRepository = (*PostgresTagTypesRepository)(nil)

func (r *PostgresTagTypesRepository) CreateTagType(ctx context.Context, tagType *domain.TagType) (*domain.TagType, error) {
	created := *tagType
	created.TagTypeID = uuid.NewString()

	query := `
		INSERT INTO tag_types (tag_type_id, user_id, name)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, created.TagTypeID, created.UserID, created.Name); err != nil {
		return nil, fmt.Errorf("failed to create tag type: %w", err)
	}
	return &created, nil
}

func (r *PostgresTagTypesRepository) GetTagType(ctx context.Context, userID, tagTypeID string) (*domain.TagType, error) {
	query := `
		SELECT tag_type_id, user_id, name
		FROM tag_types
		WHERE user_id = $1 AND tag_type_id = $2
	`

	var tt domain.TagType
	err := r.db.QueryRowContext(ctx, query, userID, tagTypeID).Scan(&tt.TagTypeID, &tt.UserID, &tt.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag type: %w", err)
	}
	return &tt, nil
}

func (r *PostgresTagTypesRepository) ListTagTypes(ctx context.Context, userID string) ([]*domain.TagType, error) {
	query := `
		SELECT tag_type_id, user_id, name
		FROM tag_types
		WHERE user_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag types: %w", err)
	}
	defer rows.Close()

	var items []*domain.TagType
	for rows.Next() {
		var tt domain.TagType
		if err := rows.Scan(&tt.TagTypeID, &tt.UserID, &tt.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag type: %w", err)
		}
		items = append(items, &tt)
	}
	return items, rows.Err()
}

func (r *PostgresTagTypesRepository) UpdateTagType(ctx context.Context, userID, tagTypeID string, patch domain.TagTypePatch) (*domain.TagType, error) {
	if patch.Name.Set && patch.Name.Valid {
		query := `
			UPDATE tag_types
			SET name = $3
			WHERE user_id = $1 AND tag_type_id = $2
		`
		res, err := r.db.ExecContext(ctx, query, userID, tagTypeID, patch.Name.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to update tag type: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, domain.ErrNotFound
		}
	}
	return r.GetTagType(ctx, userID, tagTypeID)
}

// DeleteTagType 级联删除在单个事务内显式执行（子表先删），
// 不依赖ON DELETE CASCADE是否启用
func (r *PostgresTagTypesRepository) DeleteTagType(ctx context.Context, userID, tagTypeID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// activities -> subtags -> tags -> tag_type
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM activities
		WHERE tag_id IN (SELECT tag_id FROM tags WHERE user_id = $1 AND tag_type_id = $2)
	`, userID, tagTypeID); err != nil {
		return false, fmt.Errorf("failed to cascade activities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM subtags
		WHERE tag_id IN (SELECT tag_id FROM tags WHERE user_id = $1 AND tag_type_id = $2)
	`, userID, tagTypeID); err != nil {
		return false, fmt.Errorf("failed to cascade subtags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM tags WHERE user_id = $1 AND tag_type_id = $2
	`, userID, tagTypeID); err != nil {
		return false, fmt.Errorf("failed to cascade tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM tag_types WHERE user_id = $1 AND tag_type_id = $2
	`, userID, tagTypeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete tag type: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}
