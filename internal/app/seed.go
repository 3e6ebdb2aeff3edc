package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"todo-notes/internal/service"
)

type seedFile struct {
	Users []service.SeedUser `json:"users"`
}

// LoadSeedFile reads a file of the form {"users": [{"username": ..., "password": ...}]}.
func LoadSeedFile(path string) ([]service.SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return f.Users, nil
}

// Seed registers users from path when the collection is empty. Problems are
// logged; seeding never stops startup.
func (a *App) Seed(ctx context.Context, path string) int {
	seeds, err := LoadSeedFile(path)
	if err != nil {
		a.Logger.WithError(err).Warn("seeding skipped")
		return 0
	}
	n, err := a.Users.SeedUsers(ctx, seeds)
	if err != nil {
		a.Logger.WithError(err).Warn("seeding failed")
		return n
	}
	if n > 0 {
		a.Logger.Infof("seeded %d users from %s", n, path)
	}
	return n
}
