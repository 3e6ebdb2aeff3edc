package kv

import (
	"context"

	"github.com/sirupsen/logrus"

	"todo-notes/internal/domain"
	"todo-notes/internal/repository"
	"todo-notes/internal/storage"
)

type UserRepository struct {
	blob blob
}

func NewUserRepository(store storage.Store, logger *logrus.Logger) repository.UserRepository {
	return &UserRepository{blob: newBlob(store, storage.KeyUsers, logger)}
}

func (r *UserRepository) List(ctx context.Context) []domain.User {
	var users []domain.User
	if !r.blob.read(ctx, &users) || users == nil {
		return []domain.User{}
	}
	return users
}

func (r *UserRepository) Save(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	return r.blob.write(ctx, users)
}

func (r *UserRepository) Clear(ctx context.Context) error {
	return r.blob.remove(ctx)
}

type SessionRepository struct {
	blob blob
}

func NewSessionRepository(store storage.Store, logger *logrus.Logger) repository.SessionRepository {
	return &SessionRepository{blob: newBlob(store, storage.KeyCurrentUser, logger)}
}

// Load returns nil when no pointer is stored or it cannot be decoded.
func (r *SessionRepository) Load(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if !r.blob.read(ctx, &user) || user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

func (r *SessionRepository) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return r.Clear(ctx)
	}
	return r.blob.write(ctx, user)
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.blob.remove(ctx)
}
