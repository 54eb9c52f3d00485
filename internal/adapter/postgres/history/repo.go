// Package history implements the append-only audit trail (publish events and
// change records) using PostgreSQL.
package history

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

var eventColumns = []string{
	"id", "user_id", "schedule_id", "publish_note", "move_types",
	"change_count", "direct_edit_count", "cascaded_count", "published_at",
}

var recordColumns = []string{
	"id", "publish_event_id", "activity_id", "schedule_id", "field_name",
	"old_value", "new_value", "is_direct_edit", "source_activity_id", "changed_at",
}

// Repo provides audit-trail persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new history repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// InsertPublishEvent appends one publish event and returns it with its
// assigned id and timestamp.
func (r *Repo) InsertPublishEvent(ctx context.Context, ev domain.PublishEvent) (domain.PublishEvent, error) {
	moveTypes := make([]string, len(ev.MoveTypes))
	for i, m := range ev.MoveTypes {
		moveTypes[i] = m.String()
	}

	query, args, err := qb.Insert("publish_events").
		Columns("user_id", "schedule_id", "publish_note", "move_types",
			"change_count", "direct_edit_count", "cascaded_count").
		Values(ev.UserID, ev.ScheduleID, ev.Note, moveTypes,
			ev.ChangeCount, ev.DirectEditCount, ev.CascadedCount).
		Suffix("RETURNING id, published_at").ToSql()
	if err != nil {
		return domain.PublishEvent{}, fmt.Errorf("build publish event insert: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	if err := row.Scan(&ev.ID, &ev.PublishedAt); err != nil {
		return domain.PublishEvent{}, postgres.MapError(err, "publish event for schedule", ev.ScheduleID)
	}
	return ev, nil
}

// InsertChangeRecords appends change records in one statement.
func (r *Repo) InsertChangeRecords(ctx context.Context, records []domain.ChangeRecord) error {
	if len(records) == 0 {
		return nil
	}

	b := qb.Insert("change_records").Columns(
		"publish_event_id", "activity_id", "schedule_id", "field_name",
		"old_value", "new_value", "is_direct_edit", "source_activity_id",
	)
	for _, rec := range records {
		b = b.Values(
			rec.PublishEventID, rec.ActivityID, rec.ScheduleID, rec.Field.String(),
			rec.OldValue, rec.NewValue, rec.IsDirectEdit, rec.SourceActivityID,
		)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build change record insert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "change records for event", records[0].PublishEventID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns one publish event.
func (r *Repo) GetByID(ctx context.Context, eventID int64) (*domain.PublishEvent, error) {
	query, args, err := qb.Select(eventColumns...).From("publish_events").
		Where(sq.Eq{"id": eventID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build publish event query: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, postgres.MapError(err, "publish event", eventID)
	}
	return ev, nil
}

// ListByIDs returns the publish events with the given ids.
func (r *Repo) ListByIDs(ctx context.Context, ids []int64) ([]domain.PublishEvent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select(eventColumns...).From("publish_events").
		Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build publish event query: %w", err)
	}
	return r.queryEvents(ctx, query, args)
}

// ListBySchedule returns publish events for a schedule, newest first.
func (r *Repo) ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.PublishEvent, error) {
	query, args, err := qb.Select(eventColumns...).From("publish_events").
		Where(sq.Eq{"schedule_id": scheduleID}).
		OrderBy("published_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build publish event query: %w", err)
	}
	return r.queryEvents(ctx, query, args)
}

// ListRecordsByActivity returns change records for an activity, newest first.
func (r *Repo) ListRecordsByActivity(ctx context.Context, activityID int64) ([]domain.ChangeRecord, error) {
	query, args, err := qb.Select(recordColumns...).From("change_records").
		Where(sq.Eq{"activity_id": activityID}).
		OrderBy("changed_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build change record query: %w", err)
	}
	return r.queryRecords(ctx, query, args)
}

// ListRecordsByEvent returns change records of one publish event in insertion
// order.
func (r *Repo) ListRecordsByEvent(ctx context.Context, eventID int64) ([]domain.ChangeRecord, error) {
	query, args, err := qb.Select(recordColumns...).From("change_records").
		Where(sq.Eq{"publish_event_id": eventID}).
		OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build change record query: %w", err)
	}
	return r.queryRecords(ctx, query, args)
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func (r *Repo) queryEvents(ctx context.Context, query string, args []any) ([]domain.PublishEvent, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query publish events: %w", err)
	}
	defer rows.Close()

	var events []domain.PublishEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publish event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func (r *Repo) queryRecords(ctx context.Context, query string, args []any) ([]domain.ChangeRecord, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query change records: %w", err)
	}
	defer rows.Close()

	var records []domain.ChangeRecord
	for rows.Next() {
		var rec domain.ChangeRecord
		err := rows.Scan(
			&rec.ID, &rec.PublishEventID, &rec.ActivityID, &rec.ScheduleID, &rec.Field,
			&rec.OldValue, &rec.NewValue, &rec.IsDirectEdit, &rec.SourceActivityID, &rec.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan change record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanEvent(row pgx.Row) (*domain.PublishEvent, error) {
	var ev domain.PublishEvent
	var moveTypes []string
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.ScheduleID, &ev.Note, &moveTypes,
		&ev.ChangeCount, &ev.DirectEditCount, &ev.CascadedCount, &ev.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.MoveTypes = make([]domain.MoveType, len(moveTypes))
	for i, m := range moveTypes {
		ev.MoveTypes[i] = domain.MoveType(m)
	}
	return &ev, nil
}
