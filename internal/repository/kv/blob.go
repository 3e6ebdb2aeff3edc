// Package kv implements the repositories on a storage.Store, one JSON blob
// per key. Every write serializes and overwrites the whole value.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"todo-notes/internal/storage"
)

type blob struct {
	store  storage.Store
	key    string
	logger logrus.FieldLogger
}

func newBlob(store storage.Store, key string, logger *logrus.Logger) blob {
	if logger == nil {
		logger = logrus.New()
	}
	return blob{
		store:  store,
		key:    key,
		logger: logger.WithFields(logrus.Fields{"component": "kv", "key": key}),
	}
}

// read decodes the blob into dest. Missing, unreadable or malformed values
// leave dest untouched and report false.
func (b blob) read(ctx context.Context, dest any) bool {
	raw, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			b.logger.Debug("storage unavailable, treating value as absent")
		} else {
			b.logger.WithError(err).Error("failed to read value")
		}
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		b.logger.WithError(err).Error("malformed stored value, ignoring")
		return false
	}
	return true
}

// write overwrites the blob. An unavailable medium is logged and ignored.
func (b blob) write(ctx context.Context, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", b.key, err)
	}
	if err := b.store.Set(ctx, b.key, string(data)); err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			b.logger.Warn("storage unavailable, write skipped")
			return nil
		}
		return fmt.Errorf("save %s: %w", b.key, err)
	}
	return nil
}

func (b blob) remove(ctx context.Context) error {
	if err := b.store.Remove(ctx, b.key); err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			b.logger.Warn("storage unavailable, remove skipped")
			return nil
		}
		return fmt.Errorf("remove %s: %w", b.key, err)
	}
	return nil
}
