package repository

import (
	"context"
	"database/sql"
	"fmt"

	"chronary-tracker/internal/domain"

	"github.com/google/uuid"
)

// PostgresSubtagsRepository 二级标签Repository实现
type PostgresSubtagsRepository struct {
	db *sql.DB
}

// NewPostgresSubtagsRepository 创建二级标签Repository
func NewPostgresSubtagsRepository(db *sql.DB) *PostgresSubtagsRepository {
	return &PostgresSubtagsRepository{db: db}
}

// 确保实现了接口
var _ SubtagsRepository = (*PostgresSubtagsRepository)(nil)

func (r *PostgresSubtagsRepository) CreateSubtag(ctx context.Context, subtag *domain.Subtag) (*domain.Subtag, error) {
	created := *subtag
	created.SubtagID = uuid.NewString()

	query := `
		INSERT INTO subtags (subtag_id, tag_id, name)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, created.SubtagID, created.TagID, created.Name); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotOwned
		}
		return nil, fmt.Errorf("failed to create subtag: %w", err)
	}
	return &created, nil
}

func (r *PostgresSubtagsRepository) GetSubtag(ctx context.Context, userID, subtagID string) (*domain.Subtag, error) {
	query := `
		SELECT s.subtag_id, s.tag_id, s.name
		FROM subtags s
		JOIN tags t ON t.tag_id = s.tag_id
		WHERE s.subtag_id = $1 AND t.user_id = $2
	`

	var st domain.Subtag
	err := r.db.QueryRowContext(ctx, query, subtagID, userID).Scan(&st.SubtagID, &st.TagID, &st.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subtag: %w", err)
	}
	return &st, nil
}

func (r *PostgresSubtagsRepository) GetSubtagForTag(ctx context.Context, tagID, subtagID string) (*domain.Subtag, error) {
	query := `
		SELECT subtag_id, tag_id, name
		FROM subtags
		WHERE subtag_id = $1 AND tag_id = $2
	`

	var st domain.Subtag
	err := r.db.QueryRowContext(ctx, query, subtagID, tagID).Scan(&st.SubtagID, &st.TagID, &st.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subtag: %w", err)
	}
	return &st, nil
}

func (r *PostgresSubtagsRepository) ListSubtagsForTag(ctx context.Context, userID, tagID string) ([]*domain.Subtag, error) {
	query := `
		SELECT s.subtag_id, s.tag_id, s.name
		FROM subtags s
		JOIN tags t ON t.tag_id = s.tag_id
		WHERE s.tag_id = $1 AND t.user_id = $2
		ORDER BY s.name
	`
	return r.querySubtags(ctx, query, tagID, userID)
}

func (r *PostgresSubtagsRepository) ListSubtags(ctx context.Context, userID string) ([]*domain.Subtag, error) {
	query := `
		SELECT s.subtag_id, s.tag_id, s.name
		FROM subtags s
		JOIN tags t ON t.tag_id = s.tag_id
		WHERE t.user_id = $1
	`
	return r.querySubtags(ctx, query, userID)
}

func (r *PostgresSubtagsRepository) querySubtags(ctx context.Context, query string, args ...any) ([]*domain.Subtag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtags: %w", err)
	}
	defer rows.Close()

	var items []*domain.Subtag
	for rows.Next() {
		var st domain.Subtag
		if err := rows.Scan(&st.SubtagID, &st.TagID, &st.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subtag: %w", err)
		}
		items = append(items, &st)
	}
	return items, rows.Err()
}

func (r *PostgresSubtagsRepository) UpdateSubtag(ctx context.Context, userID, subtagID string, patch domain.SubtagPatch) (*domain.Subtag, error) {
	if patch.Name.Set && patch.Name.Valid {
		query := `
			UPDATE subtags s
			SET name = $3
			FROM tags t
			WHERE t.tag_id = s.tag_id AND s.subtag_id = $1 AND t.user_id = $2
		`
		res, err := r.db.ExecContext(ctx, query, subtagID, userID, patch.Name.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to update subtag: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, domain.ErrNotFound
		}
	}
	return r.GetSubtag(ctx, userID, subtagID)
}

// DeleteSubtag 级联删除引用该subtag的activities
func (r *PostgresSubtagsRepository) DeleteSubtag(ctx context.Context, userID, subtagID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM activities
		WHERE subtag_id IN (
			SELECT s.subtag_id FROM subtags s
			JOIN tags t ON t.tag_id = s.tag_id
			WHERE s.subtag_id = $1 AND t.user_id = $2
		)
	`, subtagID, userID); err != nil {
		return false, fmt.Errorf("failed to cascade activities: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM subtags s
		USING tags t
		WHERE t.tag_id = s.tag_id AND s.subtag_id = $1 AND t.user_id = $2
	`, subtagID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subtag: %w", err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}
