package repository

import (
	"context"

	"todo-notes/internal/domain"
)

// PreferenceRepository stores UI preferences.
type PreferenceRepository interface {
	Theme(ctx context.Context) (domain.Theme, bool)
	SetTheme(ctx context.Context, theme domain.Theme) error
}

// NoteRepository stores a snapshot of the note list.
type NoteRepository interface {
	Load(ctx context.Context) []domain.Note
	Save(ctx context.Context, notes []domain.Note) error
}
