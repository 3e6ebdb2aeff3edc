package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"todo-notes/internal/domain"
	"todo-notes/internal/notes"
	"todo-notes/internal/repository"
)

// ErrNoteNotFound is returned when no note has the given id.
var ErrNoteNotFound = errors.New("note not found")

// NoteService guards the todo list shared by concurrent requests.
type NoteService interface {
	Add(ctx context.Context, title, content string) (domain.Note, error)
	Edit(ctx context.Context, id int64, title, content string) (domain.Note, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64) (domain.Note, error)
	Get(ctx context.Context, id int64) (domain.Note, error)
	Query(ctx context.Context, query string, filter domain.NoteFilter) []domain.Note
}

type NoteServiceConfig struct {
	// Repository persists a snapshot after every mutation; nil keeps notes in memory only.
	Repository repository.NoteRepository
	Logger     *logrus.Logger
	Now        func() time.Time
}

type noteService struct {
	mu     sync.Mutex
	list   *notes.List
	repo   repository.NoteRepository
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewNoteService(ctx context.Context, cfg NoteServiceConfig) NoteService {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	var initial []domain.Note
	if cfg.Repository != nil {
		initial = cfg.Repository.Load(ctx)
	}
	return &noteService{
		list:   notes.NewList(initial),
		repo:   cfg.Repository,
		logger: cfg.Logger.WithField("component", "notes"),
		now:    cfg.Now,
	}
}

func (s *noteService) Add(ctx context.Context, title, content string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note := s.list.Add(title, content, s.now().UTC())
	return note, s.persist(ctx)
}

func (s *noteService) Edit(ctx context.Context, id int64, title, content string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.list.Edit(id, title, content)
	if !ok {
		return domain.Note{}, ErrNoteNotFound
	}
	return note, s.persist(ctx)
}

func (s *noteService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.list.Delete(id) {
		return ErrNoteNotFound
	}
	return s.persist(ctx)
}

func (s *noteService) Toggle(ctx context.Context, id int64) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.list.Toggle(id)
	if !ok {
		return domain.Note{}, ErrNoteNotFound
	}
	return note, s.persist(ctx)
}

func (s *noteService) Get(_ context.Context, id int64) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.list.Get(id)
	if !ok {
		return domain.Note{}, ErrNoteNotFound
	}
	return note, nil
}

func (s *noteService) Query(_ context.Context, query string, filter domain.NoteFilter) []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Query(query, filter)
}

func (s *noteService) persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, s.list.All()); err != nil {
		s.logger.WithError(err).Error("failed to persist notes")
		return err
	}
	return nil
}
