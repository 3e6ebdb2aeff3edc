package domain

import "time"

// Note is a single todo entry.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteFilter selects notes by completion state.
type NoteFilter string

const (
	NoteFilterAll         NoteFilter = "all"
	NoteFilterCompleted   NoteFilter = "completed"
	NoteFilterUncompleted NoteFilter = "uncompleted"
)

// ParseNoteFilter maps a query value to a filter, defaulting to all.
func ParseNoteFilter(s string) (NoteFilter, bool) {
	switch NoteFilter(s) {
	case "", NoteFilterAll:
		return NoteFilterAll, true
	case NoteFilterCompleted:
		return NoteFilterCompleted, true
	case NoteFilterUncompleted:
		return NoteFilterUncompleted, true
	}
	return NoteFilterAll, false
}

// Match reports whether a note passes the filter.
func (f NoteFilter) Match(n Note) bool {
	switch f {
	case NoteFilterCompleted:
		return n.Completed
	case NoteFilterUncompleted:
		return !n.Completed
	}
	return true
}
