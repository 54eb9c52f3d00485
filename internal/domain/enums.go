package domain

// MoveType identifies the kind of edit a user requested.
type MoveType string

const (
	MoveTypeMoveStart      MoveType = "move_start"
	MoveTypeChangeDuration MoveType = "change_duration"
	MoveTypeStatusUpdate   MoveType = "status_update"
)

func (m MoveType) String() string { return string(m) }

// IsValid reports whether the move type is one a caller may stage.
// status_update is reserved for immediate status transitions and is not
// stageable.
func (m MoveType) IsValid() bool {
	switch m {
	case MoveTypeMoveStart, MoveTypeChangeDuration:
		return true
	}
	return false
}

// FieldName identifies which activity field a change touches.
type FieldName string

const (
	FieldStartDate FieldName = "start_date"
	FieldEndDate   FieldName = "end_date"
	FieldDuration  FieldName = "duration"
	FieldStatus    FieldName = "status"
)

func (f FieldName) String() string { return string(f) }

func (f FieldName) IsValid() bool {
	switch f {
	case FieldStartDate, FieldEndDate, FieldDuration, FieldStatus:
		return true
	}
	return false
}

// DependencyType is the relationship between a predecessor and a successor.
type DependencyType string

const (
	// DependencyFS (finish-to-start): successor cannot start until the
	// predecessor finishes, plus lag.
	DependencyFS DependencyType = "FS"
	// DependencySS (start-to-start): successor cannot start until the
	// predecessor starts, plus lag.
	DependencySS DependencyType = "SS"
)

func (d DependencyType) String() string { return string(d) }

func (d DependencyType) IsValid() bool {
	switch d {
	case DependencyFS, DependencySS:
		return true
	}
	return false
}

// ActivityStatus is the lifecycle status of a schedule activity.
type ActivityStatus string

const (
	StatusReleased  ActivityStatus = "Released"
	StatusCompleted ActivityStatus = "Completed"
	StatusApproved  ActivityStatus = "Approved"
)

func (s ActivityStatus) String() string { return string(s) }

func (s ActivityStatus) IsValid() bool {
	switch s {
	case StatusReleased, StatusCompleted, StatusApproved:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transitions are allowed.
func (s ActivityStatus) IsTerminal() bool { return s == StatusApproved }

// IsStatusTarget reports whether s is a status a user may transition to
// directly. Released is assigned by schedule creation, never by hand.
func (s ActivityStatus) IsStatusTarget() bool {
	return s == StatusCompleted || s == StatusApproved
}
