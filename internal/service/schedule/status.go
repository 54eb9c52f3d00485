package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

// StatusResult reports an immediate status transition.
type StatusResult struct {
	EventID   int64
	OldStatus domain.ActivityStatus
	NewStatus domain.ActivityStatus
}

// SetStatus transitions an activity's status directly, bypassing staging.
// Status is not part of the dependency model, so no cascade is computed; a
// synthetic single-change publish event keeps the audit trail uniform.
//
// The transition is rejected when the activity already has the requested
// status or is in a terminal status (Approved).
func (s *Service) SetStatus(ctx context.Context, in StatusInput) (*StatusResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	activity, err := s.activities.GetByID(ctx, in.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("load activity %d: %w", in.ActivityID, err)
	}
	if activity.ScheduleID != in.ScheduleID {
		return nil, fmt.Errorf("activity %d in schedule %d: %w", in.ActivityID, in.ScheduleID, domain.ErrNotFound)
	}

	oldStatus := activity.Status
	if oldStatus == in.Status {
		return nil, domain.NewValidationError("status", fmt.Sprintf("status is already %s", in.Status))
	}
	if oldStatus.IsTerminal() {
		return nil, domain.NewValidationError("status", "cannot change status of an Approved activity")
	}

	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", in.Status)
	}

	event, err := s.history.InsertPublishEvent(ctx, domain.PublishEvent{
		UserID:          in.UserID,
		ScheduleID:      in.ScheduleID,
		Note:            note,
		MoveTypes:       []domain.MoveType{domain.MoveTypeStatusUpdate},
		ChangeCount:     1,
		DirectEditCount: 1,
		CascadedCount:   0,
	})
	if err != nil {
		return nil, fmt.Errorf("insert publish event: %w", err)
	}

	oldValue := oldStatus.String()
	err = s.history.InsertChangeRecords(ctx, []domain.ChangeRecord{{
		PublishEventID: event.ID,
		ActivityID:     in.ActivityID,
		ScheduleID:     in.ScheduleID,
		Field:          domain.FieldStatus,
		OldValue:       &oldValue,
		NewValue:       in.Status.String(),
		IsDirectEdit:   true,
	}})
	if err != nil {
		return nil, fmt.Errorf("insert change record: %w", err)
	}

	newStatus := in.Status
	err = s.activities.ApplyFieldUpdate(ctx, domain.ActivityFieldUpdate{
		ActivityID: in.ActivityID,
		Status:     &newStatus,
		ModifiedBy: in.UserID,
		ModifiedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("update activity status: %w", err)
	}

	s.log.Info("status transition",
		slog.String("user_id", in.UserID.String()),
		slog.Int64("activity_id", in.ActivityID),
		slog.String("old_status", oldStatus.String()),
		slog.String("new_status", in.Status.String()),
		slog.Int64("publish_event_id", event.ID),
	)

	return &StatusResult{EventID: event.ID, OldStatus: oldStatus, NewStatus: in.Status}, nil
}
