package domain

import "time"

// Todo is the only entity. ID is assigned by the store and never changes.
type Todo struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	DeadlineAt  *time.Time
}

// TodoPatch carries a partial update. Nil pointers leave the field unchanged.
// DeadlineSet distinguishes "clear the deadline" (DeadlineSet, DeadlineAt nil)
// from "leave it alone".
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	DeadlineSet bool
	DeadlineAt  *time.Time
}

// Apply returns t with the supplied fields overwritten.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DeadlineSet {
		t.DeadlineAt = p.DeadlineAt
	}
	return t
}

// ListFilter narrows a list of todos. A nil Window disables the deadline filter.
type ListFilter struct {
	Completed bool
	Window    *int
}

// WithinWindow reports whether the deadline is set and at most days whole
// days away from now, in either direction.
func (t Todo) WithinWindow(now time.Time, days int) bool {
	if t.DeadlineAt == nil {
		return false
	}
	return wholeDaysBetween(*t.DeadlineAt, now) <= int64(days)
}

// wholeDaysBetween is floor(|a-b| / 24h), exact for any two times in years
// 1 through 9999.
func wholeDaysBetween(a, b time.Time) int64 {
	if a.Before(b) {
		a, b = b, a
	}
	secs := a.Unix() - b.Unix()
	if a.Nanosecond() < b.Nanosecond() {
		secs--
	}
	return secs / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

// Filter keeps the todos matching f, preserving order. The result is never nil.
func Filter(todos []Todo, f ListFilter, now time.Time) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Window != nil && !t.WithinWindow(now, *f.Window) {
			continue
		}
		if f.Completed && !t.Completed {
			continue
		}
		out = append(out, t)
	}
	return out
}
