// Package notes holds the in-memory todo list. A List is not safe for
// concurrent use; callers serialize access.
package notes

import (
	"fmt"
	"strings"
	"time"

	"todo-notes/internal/domain"
)

type List struct {
	items   []domain.Note
	counter int
}

// NewList starts a list from an existing snapshot.
func NewList(items []domain.Note) *List {
	return &List{
		items:   append([]domain.Note(nil), items...),
		counter: len(items) + 1,
	}
}

// Add appends a note. The id is the creation time in milliseconds, bumped past
// any id in use; a blank title becomes "Note #N".
func (l *List) Add(title, content string, now time.Time) domain.Note {
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Note #%d", l.counter)
	}
	l.counter++

	id := now.UnixMilli()
	for l.index(id) >= 0 {
		id++
	}

	note := domain.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedAt: now,
	}
	l.items = append(l.items, note)
	return note
}

// Edit replaces title and content. A blank title keeps the current one.
func (l *List) Edit(id int64, title, content string) (domain.Note, bool) {
	i := l.index(id)
	if i < 0 {
		return domain.Note{}, false
	}
	if strings.TrimSpace(title) != "" {
		l.items[i].Title = title
	}
	l.items[i].Content = content
	return l.items[i], true
}

func (l *List) Delete(id int64) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

func (l *List) Toggle(id int64) (domain.Note, bool) {
	i := l.index(id)
	if i < 0 {
		return domain.Note{}, false
	}
	l.items[i].Completed = !l.items[i].Completed
	return l.items[i], true
}

func (l *List) Get(id int64) (domain.Note, bool) {
	i := l.index(id)
	if i < 0 {
		return domain.Note{}, false
	}
	return l.items[i], true
}

func (l *List) Len() int {
	return len(l.items)
}

// All returns a copy of every note in insertion order.
func (l *List) All() []domain.Note {
	out := make([]domain.Note, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Filter(f domain.NoteFilter) []domain.Note {
	return l.Query("", f)
}

// Search matches query case-insensitively against title and content. An empty
// query matches every note.
func (l *List) Search(query string) []domain.Note {
	return l.Query(query, domain.NoteFilterAll)
}

func (l *List) Query(query string, f domain.NoteFilter) []domain.Note {
	q := strings.ToLower(query)
	out := []domain.Note{}
	for _, n := range l.items {
		if !f.Match(n) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (l *List) index(id int64) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}
