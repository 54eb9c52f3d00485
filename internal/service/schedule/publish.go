package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

// ActivityUpdateFailure reports one live-record update that failed during
// publish.
type ActivityUpdateFailure struct {
	ActivityID int64
	Err        error
}

// PublishResult reports the outcome of a publish. The audit trail (event +
// change records) is written before live records are updated and is never
// rolled back; a non-empty Failed list means the publish partially succeeded
// and the audit trail is the source of truth for the intended state.
type PublishResult struct {
	EventID       int64
	ChangeCount   int
	DirectCount   int
	CascadedCount int
	Failed        []ActivityUpdateFailure
}

// PartiallyFailed reports whether any live-record update failed.
func (r *PublishResult) PartiallyFailed() bool { return len(r.Failed) > 0 }

// Publish converts the staged ledger into permanent field updates plus an
// append-only audit trail, then clears the ledger.
//
// This is deliberately not a single database transaction: the event and
// change records are persisted first, then each activity is updated
// best-effort, then staging is cleared regardless of per-activity outcomes.
func (s *Service) Publish(ctx context.Context, in PublishInput) (*PublishResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(in.UserID, in.ScheduleID)
	defer unlock()

	staged, err := s.staging.ListByUserSchedule(ctx, in.UserID, in.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("load staged changes: %w", err)
	}
	if len(staged) == 0 {
		return nil, domain.NewValidationError("staged_changes", "no staged changes to publish")
	}

	directCount, cascadedCount := 0, 0
	for _, r := range staged {
		if r.IsDirectEdit {
			directCount++
		} else {
			cascadedCount++
		}
	}

	event, err := s.history.InsertPublishEvent(ctx, domain.PublishEvent{
		UserID:          in.UserID,
		ScheduleID:      in.ScheduleID,
		Note:            strings.TrimSpace(in.Note),
		MoveTypes:       distinctMoveTypes(staged),
		ChangeCount:     len(staged),
		DirectEditCount: directCount,
		CascadedCount:   cascadedCount,
	})
	if err != nil {
		return nil, fmt.Errorf("insert publish event: %w", err)
	}

	records := make([]domain.ChangeRecord, len(staged))
	for i, r := range staged {
		records[i] = domain.ChangeRecord{
			PublishEventID:   event.ID,
			ActivityID:       r.ActivityID,
			ScheduleID:       in.ScheduleID,
			Field:            r.Field,
			OldValue:         r.OriginalValue,
			NewValue:         r.StagedValue,
			IsDirectEdit:     r.IsDirectEdit,
			SourceActivityID: r.SourceActivityID,
		}
	}
	if err := s.history.InsertChangeRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("insert change records: %w", err)
	}

	result := &PublishResult{
		EventID:       event.ID,
		ChangeCount:   len(staged),
		DirectCount:   directCount,
		CascadedCount: cascadedCount,
	}

	now := time.Now().UTC()
	for _, upd := range mergeUpdates(staged, in, now) {
		if err := s.activities.ApplyFieldUpdate(ctx, upd); err != nil {
			result.Failed = append(result.Failed, ActivityUpdateFailure{ActivityID: upd.ActivityID, Err: err})
			s.log.Error("publish: activity update failed",
				slog.Int64("activity_id", upd.ActivityID),
				slog.Int64("publish_event_id", event.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.staging.DeleteByUserSchedule(ctx, in.UserID, in.ScheduleID); err != nil {
		// Staging is disposable and will be replaced on the next stage
		// call; report but do not fail the publish.
		s.log.Error("publish: clear staging failed",
			slog.Int64("publish_event_id", event.ID),
			slog.String("error", err.Error()),
		)
	}

	s.log.Info("published staged changes",
		slog.String("user_id", in.UserID.String()),
		slog.Int64("schedule_id", in.ScheduleID),
		slog.Int64("publish_event_id", event.ID),
		slog.Int("changes", result.ChangeCount),
		slog.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// mergeUpdates groups staged rows by activity and merges their field values
// into one update per activity.
func mergeUpdates(staged []domain.StagedChange, in PublishInput, now time.Time) []domain.ActivityFieldUpdate {
	byActivity := make(map[int64]*domain.ActivityFieldUpdate)
	var order []int64

	for _, r := range staged {
		upd, ok := byActivity[r.ActivityID]
		if !ok {
			upd = &domain.ActivityFieldUpdate{
				ActivityID: r.ActivityID,
				ModifiedBy: in.UserID,
				ModifiedAt: now,
			}
			byActivity[r.ActivityID] = upd
			order = append(order, r.ActivityID)
		}

		switch r.Field {
		case domain.FieldStartDate:
			if d, err := domain.ParseDate(r.StagedValue); err == nil {
				upd.StartDate = &d
			}
		case domain.FieldEndDate:
			if d, err := domain.ParseDate(r.StagedValue); err == nil {
				upd.EndDate = &d
			}
		case domain.FieldDuration:
			if n, err := strconv.Atoi(r.StagedValue); err == nil {
				upd.Duration = &n
			}
		case domain.FieldStatus:
			status := domain.ActivityStatus(r.StagedValue)
			upd.Status = &status
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	updates := make([]domain.ActivityFieldUpdate, len(order))
	for i, id := range order {
		updates[i] = *byActivity[id]
	}
	return updates
}

func distinctMoveTypes(staged []domain.StagedChange) []domain.MoveType {
	seen := make(map[domain.MoveType]bool)
	var types []domain.MoveType
	for _, r := range staged {
		if !seen[r.MoveType] {
			seen[r.MoveType] = true
			types = append(types, r.MoveType)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
