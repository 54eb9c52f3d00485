package schedule

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
	"github.com/harwell-homes/schedcast-backend/internal/service/schedule/cascade"
)

// StageInput is one requested direct edit. Value carries the target start
// date (YYYY-MM-DD) for move_start or the target duration (decimal integer,
// >= 1) for change_duration.
type StageInput struct {
	UserID     uuid.UUID
	ScheduleID int64
	ActivityID int64
	MoveType   domain.MoveType
	Value      string
}

// parse validates the input and converts it to a cascade.DirectEdit.
func (in StageInput) parse() (cascade.DirectEdit, error) {
	var errs []domain.FieldError

	if in.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "is required"})
	}
	if in.ScheduleID <= 0 {
		errs = append(errs, domain.FieldError{Field: "schedule_id", Message: "is required"})
	}
	if in.ActivityID <= 0 {
		errs = append(errs, domain.FieldError{Field: "activity_id", Message: "is required"})
	}
	if !in.MoveType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "move_type", Message: "must be 'move_start' or 'change_duration'"})
	}
	if len(errs) > 0 {
		return cascade.DirectEdit{}, domain.NewValidationErrors(errs)
	}

	switch in.MoveType {
	case domain.MoveTypeMoveStart:
		date, err := domain.ParseDate(strings.TrimSpace(in.Value))
		if err != nil {
			return cascade.DirectEdit{}, domain.NewValidationError("value", "must be a date in YYYY-MM-DD format")
		}
		return cascade.DirectEdit{MoveType: in.MoveType, StartDate: date}, nil

	default: // change_duration
		duration, err := strconv.Atoi(strings.TrimSpace(in.Value))
		if err != nil || duration < 1 {
			return cascade.DirectEdit{}, domain.NewValidationError("value", "must be an integer duration of at least 1")
		}
		return cascade.DirectEdit{MoveType: in.MoveType, Duration: duration}, nil
	}
}

// PublishInput identifies the staged edit set to publish.
type PublishInput struct {
	UserID     uuid.UUID
	ScheduleID int64
	Note       string
}

func (in PublishInput) validate() error {
	var errs []domain.FieldError

	if in.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "is required"})
	}
	if in.ScheduleID <= 0 {
		errs = append(errs, domain.FieldError{Field: "schedule_id", Message: "is required"})
	}
	if strings.TrimSpace(in.Note) == "" {
		errs = append(errs, domain.FieldError{Field: "note", Message: "publish note is required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// StatusInput is one immediate status transition request.
type StatusInput struct {
	UserID     uuid.UUID
	ScheduleID int64
	ActivityID int64
	Status     domain.ActivityStatus
	Note       string
}

func (in StatusInput) validate() error {
	var errs []domain.FieldError

	if in.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "is required"})
	}
	if in.ScheduleID <= 0 {
		errs = append(errs, domain.FieldError{Field: "schedule_id", Message: "is required"})
	}
	if in.ActivityID <= 0 {
		errs = append(errs, domain.FieldError{Field: "activity_id", Message: "is required"})
	}
	if !in.Status.IsStatusTarget() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "must be 'Completed' or 'Approved'"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// reparse turns a direct staged row group back into a DirectEdit so previously
// staged edits on other activities survive a re-stage.
func directEditFromRows(moveType domain.MoveType, rows []domain.StagedChange) (cascade.DirectEdit, bool) {
	switch moveType {
	case domain.MoveTypeMoveStart:
		for _, r := range rows {
			if r.Field == domain.FieldStartDate {
				date, err := domain.ParseDate(r.StagedValue)
				if err != nil {
					return cascade.DirectEdit{}, false
				}
				return cascade.DirectEdit{MoveType: moveType, StartDate: date}, true
			}
		}
	case domain.MoveTypeChangeDuration:
		for _, r := range rows {
			if r.Field == domain.FieldDuration {
				duration, err := strconv.Atoi(r.StagedValue)
				if err != nil {
					return cascade.DirectEdit{}, false
				}
				return cascade.DirectEdit{MoveType: moveType, Duration: duration}, true
			}
		}
	}
	return cascade.DirectEdit{}, false
}
