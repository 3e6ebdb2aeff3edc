// Package storage provides the key/value medium that plays the role of the
// browser's local storage: string keys mapped to serialized JSON blobs.
package storage

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the medium cannot be reached at all.
var ErrUnavailable = errors.New("storage unavailable")

// Keys used by the application.
const (
	KeyUsers       = "todo_app_users"
	KeyCurrentUser = "currentUser"
	KeyTheme       = "theme"
	KeyNotes       = "todo_app_notes"
)

// Store is a string-keyed blob store. Get reports ok == false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Unavailable is a Store with no backing medium.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (string, bool, error) {
	return "", false, ErrUnavailable
}

func (Unavailable) Set(context.Context, string, string) error {
	return ErrUnavailable
}

func (Unavailable) Remove(context.Context, string) error {
	return ErrUnavailable
}

var _ Store = Unavailable{}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}
