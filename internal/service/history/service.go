// Package history exposes read paths over the append-only audit trail:
// publish events per schedule, change records per activity, and full event
// detail.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type eventRepo interface {
	GetByID(ctx context.Context, eventID int64) (*domain.PublishEvent, error)
	ListByIDs(ctx context.Context, ids []int64) ([]domain.PublishEvent, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.PublishEvent, error)
	ListRecordsByActivity(ctx context.Context, activityID int64) ([]domain.ChangeRecord, error)
	ListRecordsByEvent(ctx context.Context, eventID int64) ([]domain.ChangeRecord, error)
}

type activityRepo interface {
	DescriptionsByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements audit-trail read logic.
type Service struct {
	events     eventRepo
	activities activityRepo
	log        *slog.Logger
}

// NewService creates a new history service.
func NewService(log *slog.Logger, events eventRepo, activities activityRepo) *Service {
	return &Service{events: events, activities: activities, log: log}
}

// ScheduleEvents returns all publish events for a schedule, newest first.
func (s *Service) ScheduleEvents(ctx context.Context, scheduleID int64) ([]domain.PublishEvent, error) {
	if scheduleID <= 0 {
		return nil, domain.NewValidationError("schedule_id", "is required")
	}
	events, err := s.events.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list publish events: %w", err)
	}
	return events, nil
}

// ActivityRecord pairs a change record with the publish event it belongs to.
type ActivityRecord struct {
	Record domain.ChangeRecord
	Event  domain.PublishEvent
}

// ActivityHistory returns all change records for one activity, newest first,
// each joined with its publish event.
func (s *Service) ActivityHistory(ctx context.Context, activityID int64) ([]ActivityRecord, error) {
	if activityID <= 0 {
		return nil, domain.NewValidationError("activity_id", "is required")
	}

	records, err := s.events.ListRecordsByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("list change records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	eventIDs := make([]int64, 0, len(records))
	seen := make(map[int64]bool)
	for _, r := range records {
		if !seen[r.PublishEventID] {
			seen[r.PublishEventID] = true
			eventIDs = append(eventIDs, r.PublishEventID)
		}
	}

	events, err := s.events.ListByIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list publish events: %w", err)
	}
	byID := make(map[int64]domain.PublishEvent, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	result := make([]ActivityRecord, len(records))
	for i, r := range records {
		result[i] = ActivityRecord{Record: r, Event: byID[r.PublishEventID]}
	}
	return result, nil
}

// EventRecord pairs a change record with its activity description.
type EventRecord struct {
	Record              domain.ChangeRecord
	ActivityDescription string
}

// EventDetail holds one publish event and all of its change records.
type EventDetail struct {
	Event   domain.PublishEvent
	Records []EventRecord
}

// EventDetail returns a publish event with its change records, each carrying
// the affected activity's description.
func (s *Service) EventDetail(ctx context.Context, eventID int64) (*EventDetail, error) {
	if eventID <= 0 {
		return nil, domain.NewValidationError("publish_event_id", "is required")
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load publish event %d: %w", eventID, err)
	}

	records, err := s.events.ListRecordsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list change records: %w", err)
	}

	activityIDs := make([]int64, 0, len(records))
	seen := make(map[int64]bool)
	for _, r := range records {
		if !seen[r.ActivityID] {
			seen[r.ActivityID] = true
			activityIDs = append(activityIDs, r.ActivityID)
		}
	}

	descriptions, err := s.activities.DescriptionsByIDs(ctx, activityIDs)
	if err != nil {
		return nil, fmt.Errorf("load activity descriptions: %w", err)
	}

	detail := &EventDetail{Event: *event, Records: make([]EventRecord, len(records))}
	for i, r := range records {
		detail.Records[i] = EventRecord{Record: r, ActivityDescription: descriptions[r.ActivityID]}
	}
	return detail, nil
}
