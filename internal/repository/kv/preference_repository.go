package kv

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"todo-notes/internal/domain"
	"todo-notes/internal/repository"
	"todo-notes/internal/storage"
)

// PreferenceRepository stores the theme as a bare string, not JSON.
type PreferenceRepository struct {
	store  storage.Store
	logger logrus.FieldLogger
}

func NewPreferenceRepository(store storage.Store, logger *logrus.Logger) repository.PreferenceRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &PreferenceRepository{
		store:  store,
		logger: logger.WithFields(logrus.Fields{"component": "kv", "key": storage.KeyTheme}),
	}
}

func (r *PreferenceRepository) Theme(ctx context.Context) (domain.Theme, bool) {
	raw, ok, err := r.store.Get(ctx, storage.KeyTheme)
	if err != nil {
		if !errors.Is(err, storage.ErrUnavailable) {
			r.logger.WithError(err).Error("failed to read theme")
		}
		return "", false
	}
	theme := domain.Theme(raw)
	if !ok || !theme.Valid() {
		return "", false
	}
	return theme, true
}

func (r *PreferenceRepository) SetTheme(ctx context.Context, theme domain.Theme) error {
	if err := r.store.Set(ctx, storage.KeyTheme, string(theme)); err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			r.logger.Warn("storage unavailable, theme not saved")
			return nil
		}
		return err
	}
	return nil
}

type NoteRepository struct {
	blob blob
}

func NewNoteRepository(store storage.Store, logger *logrus.Logger) repository.NoteRepository {
	return &NoteRepository{blob: newBlob(store, storage.KeyNotes, logger)}
}

func (r *NoteRepository) Load(ctx context.Context) []domain.Note {
	var notes []domain.Note
	if !r.blob.read(ctx, &notes) {
		return nil
	}
	return notes
}

func (r *NoteRepository) Save(ctx context.Context, notes []domain.Note) error {
	if notes == nil {
		notes = []domain.Note{}
	}
	return r.blob.write(ctx, notes)
}
