package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"chronary-tracker/internal/domain"

	"github.com/google/uuid"
)

// PostgresActivitiesRepository activity Repository实现
type PostgresActivitiesRepository struct {
	db *sql.DB
}

// NewPostgresActivitiesRepository 创建activity Repository
func NewPostgresActivitiesRepository(db *sql.DB) *PostgresActivitiesRepository {
	return &PostgresActivitiesRepository{db: db}
}

// 确保实现了接口
var _ ActivitiesRepository = (*PostgresActivitiesRepository)(nil)

const activityColumns = `activity_id, user_id, tag_id, subtag_id, name, description, "start", "end"`

func scanActivity(scan func(dest ...any) error) (*domain.Activity, error) {
	var a domain.Activity
	var subtagID sql.NullString
	var end sql.NullTime
	if err := scan(&a.ActivityID, &a.UserID, &a.TagID, &subtagID, &a.Name, &a.Description, &a.Start, &end); err != nil {
		return nil, err
	}
	if subtagID.Valid {
		a.SubtagID = &subtagID.String
	}
	if end.Valid {
		t := end.Time
		a.End = &t
	}
	return &a, nil
}

func (r *PostgresActivitiesRepository) CreateActivity(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	created := *activity
	created.ActivityID = uuid.NewString()

	query := `
		INSERT INTO activities (activity_id, user_id, tag_id, subtag_id, name, description, "start", "end")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		created.ActivityID, created.UserID, created.TagID, created.SubtagID,
		created.Name, created.Description, created.Start, created.End)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotOwned
		}
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	return &created, nil
}

func (r *PostgresActivitiesRepository) GetActivity(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1 AND activity_id = $2
	`
	a, err := scanActivity(r.db.QueryRowContext(ctx, query, userID, activityID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

func (r *PostgresActivitiesRepository) ListActivities(ctx context.Context, userID string) ([]*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1
		ORDER BY "start" DESC
	`
	return r.queryActivities(ctx, query, userID)
}

func (r *PostgresActivitiesRepository) ListActivitiesAfter(ctx context.Context, userID string, after time.Time) ([]*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1 AND "start" >= $2
		ORDER BY "start" DESC
	`
	return r.queryActivities(ctx, query, userID, after)
}

func (r *PostgresActivitiesRepository) ListActivitiesInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE user_id = $1 AND "start" >= $2 AND "start" <= $3
		ORDER BY "start" DESC
	`
	return r.queryActivities(ctx, query, userID, start, end)
}

func (r *PostgresActivitiesRepository) queryActivities(ctx context.Context, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var items []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *PostgresActivitiesRepository) UpdateActivity(ctx context.Context, userID, activityID string, patch domain.ActivityPatch) (*domain.Activity, error) {
	set := []string{}
	args := []any{userID, activityID}
	argIdx := 3

	if patch.Name.Set && patch.Name.Valid {
		set = append(set, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, patch.Name.Value)
		argIdx++
	}
	if patch.Description.Set && patch.Description.Valid {
		set = append(set, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, patch.Description.Value)
		argIdx++
	}
	if patch.TagID.Set && patch.TagID.Valid {
		set = append(set, fmt.Sprintf("tag_id = $%d", argIdx))
		args = append(args, patch.TagID.Value)
		argIdx++
	}
	if patch.SubtagID.Set {
		// 显式null => 清除subtag
		set = append(set, fmt.Sprintf("subtag_id = $%d", argIdx))
		args = append(args, patch.SubtagID.Ptr())
		argIdx++
	}

	if len(set) > 0 {
		query := fmt.Sprintf(`
			UPDATE activities SET %s
			WHERE user_id = $1 AND activity_id = $2
		`, strings.Join(set, ", "))
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, domain.ErrNotOwned
			}
			return nil, fmt.Errorf("failed to update activity: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, domain.ErrNotFound
		}
	}
	return r.GetActivity(ctx, userID, activityID)
}

// CloseActivity 单条UPDATE保证end只被设置一次：
// WHERE限定end IS NULL，没更新到行时再查一次区分NotFound和AlreadyClosed
func (r *PostgresActivitiesRepository) CloseActivity(ctx context.Context, userID, activityID string, end time.Time) (*domain.Activity, error) {
	query := `
		UPDATE activities
		SET "end" = $3
		WHERE user_id = $1 AND activity_id = $2 AND "end" IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, userID, activityID, end)
	if err != nil {
		return nil, fmt.Errorf("failed to close activity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		existing, err := r.GetActivity(ctx, userID, activityID)
		if err != nil {
			return nil, err
		}
		if existing.End != nil {
			return nil, domain.ErrAlreadyClosed
		}
		return nil, domain.ErrNotFound
	}
	return r.GetActivity(ctx, userID, activityID)
}

func (r *PostgresActivitiesRepository) DeleteActivity(ctx context.Context, userID, activityID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM activities WHERE user_id = $1 AND activity_id = $2
	`, userID, activityID)
	if err != nil {
		return false, fmt.Errorf("failed to delete activity: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
