// Package staging implements the staged-change ledger using PostgreSQL.
// Rows for a (user, schedule) pair are always replaced wholesale, never
// patched.
package staging

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres"
	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "staged_changes"

var columns = []string{
	"id", "user_id", "schedule_id", "activity_id", "move_type", "field_name",
	"original_value", "staged_value", "is_direct_edit", "source_activity_id",
	"created_at",
}

// Repo provides staged-change persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new staging repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListByUserSchedule returns all staged rows for a (user, schedule) pair in
// insertion order.
func (r *Repo) ListByUserSchedule(ctx context.Context, userID uuid.UUID, scheduleID int64) ([]domain.StagedChange, error) {
	query, args, err := qb.Select(columns...).From(table).
		Where(sq.Eq{"user_id": userID, "schedule_id": scheduleID}).
		OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build staged list query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "staged changes for schedule", scheduleID)
	}
	defer rows.Close()

	var staged []domain.StagedChange
	for rows.Next() {
		var s domain.StagedChange
		err := rows.Scan(
			&s.ID, &s.UserID, &s.ScheduleID, &s.ActivityID, &s.MoveType, &s.Field,
			&s.OriginalValue, &s.StagedValue, &s.IsDirectEdit, &s.SourceActivityID,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staged change: %w", err)
		}
		staged = append(staged, s)
	}
	return staged, rows.Err()
}

// InsertBatch inserts staged rows in one statement.
func (r *Repo) InsertBatch(ctx context.Context, batch []domain.StagedChange) error {
	if len(batch) == 0 {
		return nil
	}

	b := qb.Insert(table).Columns(
		"user_id", "schedule_id", "activity_id", "move_type", "field_name",
		"original_value", "staged_value", "is_direct_edit", "source_activity_id",
	)
	for _, s := range batch {
		b = b.Values(
			s.UserID, s.ScheduleID, s.ActivityID, s.MoveType.String(), s.Field.String(),
			s.OriginalValue, s.StagedValue, s.IsDirectEdit, s.SourceActivityID,
		)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build staged insert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "staged changes for schedule", batch[0].ScheduleID)
	}
	return nil
}

// DeleteByUserSchedule deletes all staged rows for a (user, schedule) pair.
func (r *Repo) DeleteByUserSchedule(ctx context.Context, userID uuid.UUID, scheduleID int64) error {
	query, args, err := qb.Delete(table).
		Where(sq.Eq{"user_id": userID, "schedule_id": scheduleID}).ToSql()
	if err != nil {
		return fmt.Errorf("build staged delete: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "staged changes for schedule", scheduleID)
	}
	return nil
}
