package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
	"github.com/harwell-homes/schedcast-backend/internal/service/schedule/cascade"
	"github.com/harwell-homes/schedcast-backend/internal/service/schedule/workcal"
)

// StageResult summarizes one staging pass.
type StageResult struct {
	DirectCount   int
	CascadedCount int
	Changes       []domain.FieldChange
}

// Stage adds one direct edit to the user's in-progress edit set for a
// schedule and recomputes the full cascade from live state. The staging
// ledger is replaced wholesale: previously staged direct edits on other
// activities are folded back into the edit set, a prior edit on the same
// activity is discarded, and the recomputed change list is reinserted.
// Staging the same edit twice is therefore idempotent.
func (s *Service) Stage(ctx context.Context, in StageInput) (*StageResult, error) {
	newEdit, err := in.parse()
	if err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(in.UserID, in.ScheduleID)
	defer unlock()

	activities, deps, cal, err := s.loadScheduleGraph(ctx, in.ScheduleID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.ActivitySnapshot, len(activities))
	found := false
	for i, a := range activities {
		snapshots[i] = a.Snapshot()
		if a.ID == in.ActivityID {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("activity %d in schedule %d: %w", in.ActivityID, in.ScheduleID, domain.ErrNotFound)
	}

	existing, err := s.staging.ListByUserSchedule(ctx, in.UserID, in.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("load staged changes: %w", err)
	}

	edits := rebuildDirectEdits(existing, in.ActivityID)
	edits[in.ActivityID] = newEdit

	changes, err := cascade.Calculate(edits, snapshots, deps, cal)
	if err != nil {
		return nil, err
	}

	rows := stagedRows(in.UserID, in.ScheduleID, changes, edits)

	// Delete-then-reinsert inside one transaction so a concurrent reader
	// never sees a half-replaced ledger.
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.staging.DeleteByUserSchedule(ctx, in.UserID, in.ScheduleID); err != nil {
			return fmt.Errorf("clear staged changes: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := s.staging.InsertBatch(ctx, rows); err != nil {
			return fmt.Errorf("insert staged changes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &StageResult{Changes: changes}
	for _, c := range changes {
		if c.IsDirectEdit {
			result.DirectCount++
		} else {
			result.CascadedCount++
		}
	}

	s.log.Info("staged edit",
		slog.String("user_id", in.UserID.String()),
		slog.Int64("schedule_id", in.ScheduleID),
		slog.Int64("activity_id", in.ActivityID),
		slog.String("move_type", in.MoveType.String()),
		slog.Int("direct", result.DirectCount),
		slog.Int("cascaded", result.CascadedCount),
	)

	return result, nil
}

// GetStaged returns the current staged rows for a (user, schedule) pair.
func (s *Service) GetStaged(ctx context.Context, userID uuid.UUID, scheduleID int64) ([]domain.StagedChange, error) {
	if scheduleID <= 0 {
		return nil, domain.NewValidationError("schedule_id", "is required")
	}
	rows, err := s.staging.ListByUserSchedule(ctx, userID, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("load staged changes: %w", err)
	}
	return rows, nil
}

// Discard deletes all staged rows for a (user, schedule) pair. No other side
// effects.
func (s *Service) Discard(ctx context.Context, userID uuid.UUID, scheduleID int64) error {
	if scheduleID <= 0 {
		return domain.NewValidationError("schedule_id", "is required")
	}

	unlock := s.locks.acquire(userID, scheduleID)
	defer unlock()

	if err := s.staging.DeleteByUserSchedule(ctx, userID, scheduleID); err != nil {
		return fmt.Errorf("discard staged changes: %w", err)
	}

	s.log.Info("discarded staged changes",
		slog.String("user_id", userID.String()),
		slog.Int64("schedule_id", scheduleID),
	)
	return nil
}

// loadScheduleGraph loads activities, dependency edges, and a workday
// calendar whose horizon brackets the schedule's date span plus the
// configured margin on each side.
func (s *Service) loadScheduleGraph(ctx context.Context, scheduleID int64) ([]domain.Activity, []domain.DependencyEdge, *workcal.Calendar, error) {
	activities, err := s.activities.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load activities: %w", err)
	}
	if len(activities) == 0 {
		return nil, nil, nil, fmt.Errorf("schedule %d has no activities: %w", scheduleID, domain.ErrNotFound)
	}

	deps, err := s.dependencies.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load dependencies: %w", err)
	}

	from, to := dateSpan(activities)
	from = from.AddDate(0, 0, -s.cfg.HorizonMarginDays)
	to = to.AddDate(0, 0, s.cfg.HorizonMarginDays)

	days, err := s.calendars.ListRange(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load calendar days: %w", err)
	}

	return activities, deps, workcal.New(days), nil
}

// dateSpan returns the earliest start and latest end across activities that
// carry dates. Falls back to today when none do.
func dateSpan(activities []domain.Activity) (from, to time.Time) {
	for _, a := range activities {
		if a.StartDate != nil {
			d := domain.DateOf(*a.StartDate)
			if from.IsZero() || d.Before(from) {
				from = d
			}
		}
		if a.EndDate != nil {
			d := domain.DateOf(*a.EndDate)
			if to.IsZero() || d.After(to) {
				to = d
			}
		}
	}
	now := domain.DateOf(time.Now())
	if from.IsZero() {
		from = now
	}
	if to.IsZero() {
		to = now
	}
	return from, to
}

// rebuildDirectEdits reconstructs the direct-edit set from existing staged
// rows, excluding the activity currently being edited (its prior edit is
// replaced).
func rebuildDirectEdits(existing []domain.StagedChange, editedID int64) map[int64]cascade.DirectEdit {
	byActivity := make(map[int64][]domain.StagedChange)
	moveTypes := make(map[int64]domain.MoveType)
	for _, r := range existing {
		if !r.IsDirectEdit || r.ActivityID == editedID {
			continue
		}
		byActivity[r.ActivityID] = append(byActivity[r.ActivityID], r)
		moveTypes[r.ActivityID] = r.MoveType
	}

	edits := make(map[int64]cascade.DirectEdit, len(byActivity)+1)
	for id, rows := range byActivity {
		if edit, ok := directEditFromRows(moveTypes[id], rows); ok {
			edits[id] = edit
		}
	}
	return edits
}

// stagedRows converts engine output to ledger rows, tagging each row with the
// move type of its originating direct edit.
func stagedRows(userID uuid.UUID, scheduleID int64, changes []domain.FieldChange, edits map[int64]cascade.DirectEdit) []domain.StagedChange {
	rows := make([]domain.StagedChange, 0, len(changes))
	for _, c := range changes {
		moveType := domain.MoveTypeMoveStart
		if c.IsDirectEdit {
			if e, ok := edits[c.ActivityID]; ok {
				moveType = e.MoveType
			}
		} else if c.SourceActivityID != nil {
			if e, ok := edits[*c.SourceActivityID]; ok {
				moveType = e.MoveType
			}
		}
		rows = append(rows, domain.StagedChange{
			UserID:           userID,
			ScheduleID:       scheduleID,
			ActivityID:       c.ActivityID,
			MoveType:         moveType,
			Field:            c.Field,
			OriginalValue:    c.OldValue,
			StagedValue:      c.NewValue,
			IsDirectEdit:     c.IsDirectEdit,
			SourceActivityID: c.SourceActivityID,
		})
	}
	return rows
}
