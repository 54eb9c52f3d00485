// Package activity implements the schedule-activity repository using
// PostgreSQL.
package activity

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres"
	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "activities"

var columns = []string{
	"id", "schedule_id", "description", "status",
	"current_start_date", "current_end_date", "current_duration",
	"last_modified_by", "last_modified_at", "created_at",
}

// Repo provides activity persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new activity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns one activity.
func (r *Repo) GetByID(ctx context.Context, activityID int64) (*domain.Activity, error) {
	query, args, err := qb.Select(columns...).From(table).Where(sq.Eq{"id": activityID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build activity query: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	act, err := scanActivity(row)
	if err != nil {
		return nil, postgres.MapError(err, "activity", activityID)
	}
	return act, nil
}

// ListBySchedule returns all activities of a schedule ordered by id.
func (r *Repo) ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.Activity, error) {
	query, args, err := qb.Select(columns...).From(table).
		Where(sq.Eq{"schedule_id": scheduleID}).
		OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build activity list query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "activities for schedule", scheduleID)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *act)
	}
	return activities, rows.Err()
}

// DescriptionsByIDs returns activity descriptions keyed by id.
func (r *Repo) DescriptionsByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	query, args, err := qb.Select("id", "description").From(table).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build description query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var desc string
		if err := rows.Scan(&id, &desc); err != nil {
			return nil, fmt.Errorf("scan activity description: %w", err)
		}
		descriptions[id] = desc
	}
	return descriptions, rows.Err()
}

// ApplyFieldUpdate applies one merged per-activity update. Only fields set on
// the update are written; last-modified actor and time are always written.
func (r *Repo) ApplyFieldUpdate(ctx context.Context, upd domain.ActivityFieldUpdate) error {
	b := qb.Update(table).
		Set("last_modified_by", upd.ModifiedBy).
		Set("last_modified_at", upd.ModifiedAt).
		Where(sq.Eq{"id": upd.ActivityID})

	if upd.StartDate != nil {
		b = b.Set("current_start_date", *upd.StartDate)
	}
	if upd.EndDate != nil {
		b = b.Set("current_end_date", *upd.EndDate)
	}
	if upd.Duration != nil {
		b = b.Set("current_duration", *upd.Duration)
	}
	if upd.Status != nil {
		b = b.Set("status", upd.Status.String())
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build activity update: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "activity", upd.ActivityID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d: %w", upd.ActivityID, domain.ErrNotFound)
	}
	return nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(
		&a.ID, &a.ScheduleID, &a.Description, &a.Status,
		&a.StartDate, &a.EndDate, &a.Duration,
		&a.LastModBy, &a.LastModAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
