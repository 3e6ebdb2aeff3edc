package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-notes/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func titles(notes []domain.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestList_SearchScenario(t *testing.T) {
	l := NewList(nil)
	l.Add("Buy milk", "", t0)
	l.Add("Call mom", "", t0)

	assert.Equal(t, []string{"Call mom"}, titles(l.Search("mom")))
	assert.Equal(t, []string{"Buy milk", "Call mom"}, titles(l.Search("")))
	assert.Empty(t, l.Search("zzz"))
	assert.Equal(t, []string{"Buy milk"}, titles(l.Search("MILK")))
}

func TestList_SearchMatchesContent(t *testing.T) {
	l := NewList(nil)
	l.Add("Groceries", "eggs, Bread", t0)
	l.Add("Chores", "", t0)
	assert.Equal(t, []string{"Groceries"}, titles(l.Search("bread")))
}

func TestList_AddDefaultsAndIDs(t *testing.T) {
	l := NewList(nil)
	a := l.Add("", "first", t0)
	b := l.Add("  ", "second", t0)
	c := l.Add("Named", "", t0)
	d := l.Add("", "", t0)

	assert.Equal(t, "Note #1", a.Title)
	assert.Equal(t, "Note #2", b.Title)
	assert.Equal(t, "Named", c.Title)
	assert.Equal(t, "Note #4", d.Title)

	assert.Equal(t, t0.UnixMilli(), a.ID)
	assert.Equal(t, t0.UnixMilli()+1, b.ID)
	assert.False(t, a.Completed)
	assert.Equal(t, 4, l.Len())
}

func TestList_EditToggleDelete(t *testing.T) {
	l := NewList(nil)
	n := l.Add("Title", "body", t0)

	edited, ok := l.Edit(n.ID, "", "new body")
	require.True(t, ok)
	assert.Equal(t, "Title", edited.Title)
	assert.Equal(t, "new body", edited.Content)
	assert.Equal(t, n.CreatedAt, edited.CreatedAt)

	edited, ok = l.Edit(n.ID, "Renamed", "")
	require.True(t, ok)
	assert.Equal(t, "Renamed", edited.Title)
	assert.Empty(t, edited.Content)

	toggled, ok := l.Toggle(n.ID)
	require.True(t, ok)
	assert.True(t, toggled.Completed)
	toggled, _ = l.Toggle(n.ID)
	assert.False(t, toggled.Completed)

	_, ok = l.Edit(999, "x", "y")
	assert.False(t, ok)
	_, ok = l.Toggle(999)
	assert.False(t, ok)

	assert.True(t, l.Delete(n.ID))
	assert.False(t, l.Delete(n.ID))
	_, ok = l.Get(n.ID)
	assert.False(t, ok)
}

func TestList_FilterAndQuery(t *testing.T) {
	l := NewList(nil)
	a := l.Add("Buy milk", "", t0)
	l.Add("Call mom", "", t0)
	l.Add("Buy stamps", "", t0)
	l.Toggle(a.ID)

	assert.Equal(t, []string{"Buy milk"}, titles(l.Filter(domain.NoteFilterCompleted)))
	assert.Equal(t, []string{"Call mom", "Buy stamps"}, titles(l.Filter(domain.NoteFilterUncompleted)))
	assert.Len(t, l.Filter(domain.NoteFilterAll), 3)
	assert.Equal(t, []string{"Buy stamps"}, titles(l.Query("buy", domain.NoteFilterUncompleted)))
}

func TestList_AllIsACopy(t *testing.T) {
	l := NewList([]domain.Note{{ID: 1, Title: "x"}})
	all := l.All()
	all[0].Title = "changed"
	got, _ := l.Get(1)
	assert.Equal(t, "x", got.Title)

	n := l.Add("", "", t0)
	assert.Equal(t, "Note #2", n.Title)
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		text, query string
		want        []Segment
	}{
		{"Call mom", "", []Segment{{Text: "Call mom"}}},
		{"Call mom", "MOM", []Segment{{Text: "Call "}, {Text: "mom", Match: true}}},
		{"mom and Mom", "mom", []Segment{{Text: "mom", Match: true}, {Text: " and "}, {Text: "Mom", Match: true}}},
		{"Buy milk", "zzz", []Segment{{Text: "Buy milk"}}},
		{"a+b", "+", []Segment{{Text: "a"}, {Text: "+", Match: true}, {Text: "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.query))
		})
	}
}
