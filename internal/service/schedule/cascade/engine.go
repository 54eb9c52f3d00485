// Package cascade computes the full set of field changes resulting from one
// or more direct schedule edits.
//
// Rules:
//   - FS: successor start = predecessor end + lag workdays (zero lag still
//     means one workday after the predecessor finishes).
//   - SS: successor start = predecessor start + lag workdays.
//   - Multiple predecessors: the latest candidate start wins; exact ties go
//     to the lowest predecessor ID.
//   - Duration is never changed by a cascade, only start/end dates shift.
//   - End date is always recomputed as start + duration workdays.
package cascade

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
	"github.com/harwell-homes/schedcast-backend/internal/service/schedule/workcal"
)

// DirectEdit is one user-requested edit keyed by activity ID. StartDate is
// set for move_start, Duration for change_duration.
type DirectEdit struct {
	MoveType  domain.MoveType
	StartDate time.Time
	Duration  int
}

// workState is the mutable per-activity state the engine evolves while
// cascading. It starts from live snapshot values and is discarded afterwards.
type workState struct {
	start    time.Time
	end      time.Time
	duration int
}

// Calculate applies the direct edits to the live snapshots, walks the
// dependency graph outward, and returns every resulting field change. An
// empty result means the edits had no net effect. Activities missing any of
// start, end, or duration never cascade in or out.
//
// The affected subgraph is checked for dependency cycles up front; a cycle
// yields a validation error and no changes.
func Calculate(
	edits map[int64]DirectEdit,
	activities []domain.ActivitySnapshot,
	deps []domain.DependencyEdge,
	cal *workcal.Calendar,
) ([]domain.FieldChange, error) {
	snapshots := make(map[int64]domain.ActivitySnapshot, len(activities))
	state := make(map[int64]workState, len(activities))
	for _, a := range activities {
		snapshots[a.ID] = a
		if a.Schedulable() {
			state[a.ID] = workState{start: domain.DateOf(*a.StartDate), end: domain.DateOf(*a.EndDate), duration: *a.Duration}
		}
	}

	var changes []domain.FieldChange

	// Direct edits are independent of each other; apply in ascending ID
	// order so output ordering is reproducible.
	for _, id := range sortedKeys(edits) {
		current, ok := state[id]
		if !ok {
			continue
		}
		act := snapshots[id]
		edit := edits[id]

		switch edit.MoveType {
		case domain.MoveTypeMoveStart:
			newStart, err := cal.NextWorkday(edit.StartDate)
			if err != nil {
				return nil, fmt.Errorf("cascade: normalize start for activity %d: %w", id, err)
			}
			newEnd, err := cal.CalcEndDate(newStart, current.duration)
			if err != nil {
				return nil, fmt.Errorf("cascade: end date for activity %d: %w", id, err)
			}

			if !newStart.Equal(current.start) {
				changes = append(changes, domain.FieldChange{
					ActivityID:   id,
					Field:        domain.FieldStartDate,
					OldValue:     datePtr(act.StartDate),
					NewValue:     domain.FormatDate(newStart),
					IsDirectEdit: true,
				})
			}
			if !newEnd.Equal(current.end) {
				changes = append(changes, domain.FieldChange{
					ActivityID:   id,
					Field:        domain.FieldEndDate,
					OldValue:     datePtr(act.EndDate),
					NewValue:     domain.FormatDate(newEnd),
					IsDirectEdit: true,
				})
			}
			state[id] = workState{start: newStart, end: newEnd, duration: current.duration}

		case domain.MoveTypeChangeDuration:
			newEnd, err := cal.CalcEndDate(current.start, edit.Duration)
			if err != nil {
				return nil, fmt.Errorf("cascade: end date for activity %d: %w", id, err)
			}

			if edit.Duration != current.duration {
				changes = append(changes, domain.FieldChange{
					ActivityID:   id,
					Field:        domain.FieldDuration,
					OldValue:     intPtr(act.Duration),
					NewValue:     strconv.Itoa(edit.Duration),
					IsDirectEdit: true,
				})
			}
			if !newEnd.Equal(current.end) {
				changes = append(changes, domain.FieldChange{
					ActivityID:   id,
					Field:        domain.FieldEndDate,
					OldValue:     datePtr(act.EndDate),
					NewValue:     domain.FormatDate(newEnd),
					IsDirectEdit: true,
				})
			}
			state[id] = workState{start: current.start, end: newEnd, duration: edit.Duration}

		default:
			return nil, fmt.Errorf("cascade: activity %d: unsupported move type %q: %w", id, edit.MoveType, domain.ErrValidation)
		}
	}

	succ, pred := buildEdgeMaps(deps)

	toProcess, err := discoverAffected(edits, state, succ)
	if err != nil {
		return nil, err
	}

	// Recompute cascaded activities in discovery order, which approximates
	// topological order for DAGs, updating state as we go so deep chains
	// resolve in a single pass.
	for _, id := range toProcess {
		if _, isDirect := edits[id]; isDirect {
			continue
		}
		current, ok := state[id]
		if !ok {
			continue
		}
		act := snapshots[id]

		var (
			latestStart time.Time
			sourceID    int64
			found       bool
		)
		for _, dep := range pred[id] {
			predState, ok := state[dep.PredecessorID]
			if !ok {
				continue
			}

			candidate, err := candidateStart(dep, predState, cal)
			if err != nil {
				return nil, fmt.Errorf("cascade: activity %d predecessor %d: %w", id, dep.PredecessorID, err)
			}

			// Strictly-later wins; on an exact tie the first candidate
			// (lowest predecessor ID, per edge sort order) is kept.
			if !found || candidate.After(latestStart) {
				latestStart = candidate
				sourceID = dep.PredecessorID
				found = true
			}
		}

		if !found || latestStart.Equal(current.start) {
			continue
		}

		newEnd, err := cal.CalcEndDate(latestStart, current.duration)
		if err != nil {
			return nil, fmt.Errorf("cascade: end date for activity %d: %w", id, err)
		}

		rootSource := traceRootSource(sourceID, edits, changes)

		changes = append(changes, domain.FieldChange{
			ActivityID:       id,
			Field:            domain.FieldStartDate,
			OldValue:         datePtr(act.StartDate),
			NewValue:         domain.FormatDate(latestStart),
			IsDirectEdit:     false,
			SourceActivityID: &rootSource,
		})
		if !newEnd.Equal(current.end) {
			changes = append(changes, domain.FieldChange{
				ActivityID:       id,
				Field:            domain.FieldEndDate,
				OldValue:         datePtr(act.EndDate),
				NewValue:         domain.FormatDate(newEnd),
				IsDirectEdit:     false,
				SourceActivityID: &rootSource,
			})
		}

		state[id] = workState{start: latestStart, end: newEnd, duration: current.duration}
	}

	return changes, nil
}

// candidateStart computes the start date one predecessor edge imposes on its
// successor, normalized forward to a workday.
func candidateStart(dep domain.DependencyEdge, predState workState, cal *workcal.Calendar) (time.Time, error) {
	var base time.Time
	var lag int

	switch dep.Type {
	case domain.DependencyFS:
		base = predState.end
		// An FS edge always means "starts after the predecessor
		// finishes", so zero lag still advances one workday.
		lag = dep.LagDays
		if lag == 0 {
			lag = 1
		}
	case domain.DependencySS:
		base = predState.start
		lag = dep.LagDays
	default:
		return time.Time{}, fmt.Errorf("unsupported dependency type %q: %w", dep.Type, domain.ErrValidation)
	}

	candidate, err := cal.AddWorkdays(base, lag)
	if err != nil {
		return time.Time{}, err
	}
	return cal.NextWorkday(candidate)
}

// buildEdgeMaps indexes edges by predecessor (successor lists) and by
// successor (predecessor lists). Both lists are sorted so traversal and
// tie-breaking are deterministic regardless of input order.
func buildEdgeMaps(deps []domain.DependencyEdge) (succ, pred map[int64][]domain.DependencyEdge) {
	succ = make(map[int64][]domain.DependencyEdge)
	pred = make(map[int64][]domain.DependencyEdge)
	for _, d := range deps {
		succ[d.PredecessorID] = append(succ[d.PredecessorID], d)
		pred[d.SuccessorID] = append(pred[d.SuccessorID], d)
	}
	for _, edges := range succ {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].SuccessorID != edges[j].SuccessorID {
				return edges[i].SuccessorID < edges[j].SuccessorID
			}
			return edges[i].Type < edges[j].Type
		})
	}
	for _, edges := range pred {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].PredecessorID != edges[j].PredecessorID {
				return edges[i].PredecessorID < edges[j].PredecessorID
			}
			return edges[i].Type < edges[j].Type
		})
	}
	return succ, pred
}

// discoverAffected walks successor edges breadth-first from the directly
// edited activities and returns downstream activities in discovery order.
// Activities without working state are not traversed. A cycle reachable from
// the edit set is rejected.
func discoverAffected(
	edits map[int64]DirectEdit,
	state map[int64]workState,
	succ map[int64][]domain.DependencyEdge,
) ([]int64, error) {
	roots := sortedKeys(edits)

	if err := checkCycles(roots, state, succ); err != nil {
		return nil, err
	}

	affected := make(map[int64]bool, len(edits))
	for id := range edits {
		affected[id] = true
	}

	queue := append([]int64(nil), roots...)
	visited := make(map[int64]bool)
	var toProcess []int64

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, dep := range succ[current] {
			sid := dep.SuccessorID
			if _, ok := state[sid]; !ok {
				continue
			}
			if !affected[sid] {
				affected[sid] = true
				toProcess = append(toProcess, sid)
			}
			if !visited[sid] {
				queue = append(queue, sid)
			}
		}
	}

	return toProcess, nil
}

// checkCycles runs a DFS over the subgraph reachable from roots and returns
// a validation error if a dependency cycle is found.
func checkCycles(roots []int64, state map[int64]workState, succ map[int64][]domain.DependencyEdge) error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	color := make(map[int64]int)

	var visit func(id int64) error
	visit = func(id int64) error {
		color[id] = inStack
		for _, dep := range succ[id] {
			sid := dep.SuccessorID
			if _, ok := state[sid]; !ok {
				continue
			}
			switch color[sid] {
			case inStack:
				return fmt.Errorf("dependency cycle detected through activity %d: %w", sid, domain.ErrValidation)
			case unvisited:
				if err := visit(sid); err != nil {
					return err
				}
			}
		}
		color[id] = done
		return nil
	}

	for _, id := range roots {
		if color[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// traceRootSource rewrites the winning predecessor to the originating direct
// edit: if the predecessor was itself cascaded, its own emitted change
// already names the root.
func traceRootSource(sourceID int64, edits map[int64]DirectEdit, changes []domain.FieldChange) int64 {
	if _, isDirect := edits[sourceID]; isDirect {
		return sourceID
	}
	for _, c := range changes {
		if c.ActivityID == sourceID && c.SourceActivityID != nil {
			return *c.SourceActivityID
		}
	}
	return sourceID
}

func sortedKeys(edits map[int64]DirectEdit) []int64 {
	keys := make([]int64, 0, len(edits))
	for id := range edits {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.FormatDate(*t)
	return &s
}

func intPtr(n *int) *string {
	if n == nil {
		return nil
	}
	s := strconv.Itoa(*n)
	return &s
}
