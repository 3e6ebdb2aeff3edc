package repository

import (
	"context"

	"todo-notes/internal/domain"
)

// UserRepository persists the whole user collection as one unit.
type UserRepository interface {
	List(ctx context.Context) []domain.User
	Save(ctx context.Context, users []domain.User) error
	Clear(ctx context.Context) error
}

// SessionRepository persists the pointer to the signed-in user.
type SessionRepository interface {
	Load(ctx context.Context) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Clear(ctx context.Context) error
}
