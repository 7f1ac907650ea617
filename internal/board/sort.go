package board

import (
	"slices"

	"taskboard/internal/models"
)

type SortMode string

const (
	SortDefault     SortMode = "default"
	SortDueDateAsc  SortMode = "due-date-asc"
	SortDueDateDesc SortMode = "due-date-desc"
	// SortPriorityAsc puts urgent first and SortPriorityDesc puts normal first.
	// The names read inverted; existing users depend on this order.
	SortPriorityAsc  SortMode = "priority-asc"
	SortPriorityDesc SortMode = "priority-desc"
)

var SortModes = []SortMode{SortDefault, SortDueDateAsc, SortDueDateDesc, SortPriorityAsc, SortPriorityDesc}

// ParseSortMode maps unknown values to SortDefault.
func ParseSortMode(s string) SortMode {
	m := SortMode(s)
	if slices.Contains(SortModes, m) {
		return m
	}
	return SortDefault
}

// Next cycles through SortModes.
func (m SortMode) Next() SortMode {
	i := slices.Index(SortModes, m)
	return SortModes[(i+1)%len(SortModes)]
}

func (m SortMode) Label() string {
	switch m {
	case SortDueDateAsc:
		return "Due date (earliest)"
	case SortDueDateDesc:
		return "Due date (latest)"
	case SortPriorityAsc:
		return "Priority (urgent first)"
	case SortPriorityDesc:
		return "Priority (normal first)"
	}
	return "Default"
}

// Sort returns a sorted copy; tasks is never reordered. Incomplete tasks always
// come before completed ones, whatever the mode.
func Sort(tasks []models.Task, mode SortMode) []models.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, comparator(mode))
	return out
}

func comparator(mode SortMode) func(a, b models.Task) int {
	switch mode {
	case SortDueDateAsc:
		return func(a, b models.Task) int {
			if c := byCompletion(a, b); c != 0 {
				return c
			}
			return byDueDate(a, b, false)
		}
	case SortDueDateDesc:
		return func(a, b models.Task) int {
			if c := byCompletion(a, b); c != 0 {
				return c
			}
			return byDueDate(a, b, true)
		}
	case SortPriorityAsc:
		return func(a, b models.Task) int {
			if c := byCompletion(a, b); c != 0 {
				return c
			}
			return b.Priority.Weight() - a.Priority.Weight()
		}
	case SortPriorityDesc:
		return func(a, b models.Task) int {
			if c := byCompletion(a, b); c != 0 {
				return c
			}
			return a.Priority.Weight() - b.Priority.Weight()
		}
	}
	return byDefault
}

// byDefault: priority descending, then earliest due date, undated last.
// Two completed tasks keep their fetched order.
func byDefault(a, b models.Task) int {
	if c := byCompletion(a, b); c != 0 {
		return c
	}
	if a.Completed {
		return 0
	}
	if wa, wb := a.Priority.Weight(), b.Priority.Weight(); wa != wb {
		return wb - wa
	}
	return byDueDate(a, b, false)
}

func byCompletion(a, b models.Task) int {
	switch {
	case a.Completed == b.Completed:
		return 0
	case a.Completed:
		return 1
	}
	return -1
}

// byDueDate keeps undated tasks last in both directions.
func byDueDate(a, b models.Task, desc bool) int {
	ha, hb := a.HasDueDate(), b.HasDueDate()
	switch {
	case !ha && !hb:
		return 0
	case !ha:
		return 1
	case !hb:
		return -1
	}

	da, okA := a.Due()
	db, okB := b.Due()
	if !okA || !okB {
		// Unparseable dates compare equal
		return 0
	}
	if desc {
		return db.Compare(da)
	}
	return da.Compare(db)
}
