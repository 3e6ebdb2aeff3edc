package kv

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-notes/internal/domain"
	"todo-notes/internal/storage"
)

func TestUserRepository_ListMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	logger, hook := logtest.NewNullLogger()
	repo := NewUserRepository(store, logger)

	assert.Empty(t, repo.List(ctx))
	assert.Empty(t, hook.AllEntries())

	require.NoError(t, store.Set(ctx, storage.KeyUsers, "{not json"))
	users := repo.List(ctx)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, storage.KeyUsers, hook.LastEntry().Data["key"])
}

func TestUserRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	logger, _ := logtest.NewNullLogger()
	repo := NewUserRepository(store, logger)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, []domain.User{
		{ID: "1", Username: "alice", CreatedAt: now},
		{ID: "2", Username: "bob", CreatedAt: now},
	}))
	require.NoError(t, repo.Save(ctx, []domain.User{{ID: "3", Username: "carol", CreatedAt: now}}))

	users := repo.List(ctx)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)

	require.NoError(t, repo.Clear(ctx))
	assert.Empty(t, repo.List(ctx))
}

func TestUserRepository_UnavailableIsNoOp(t *testing.T) {
	ctx := context.Background()
	logger, hook := logtest.NewNullLogger()
	repo := NewUserRepository(storage.Unavailable{}, logger)

	assert.Empty(t, repo.List(ctx))
	require.NoError(t, repo.Save(ctx, []domain.User{{ID: "1", Username: "alice"}}))
	require.NoError(t, repo.Clear(ctx))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestUserRepository_ReadsLegacyPasswordField(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	logger, _ := logtest.NewNullLogger()
	repo := NewUserRepository(store, logger)

	require.NoError(t, store.Set(ctx, storage.KeyUsers,
		`[{"id":"1700000000000","username":"bob","password":"plain123","createdAt":"2024-01-01T00:00:00.000Z"}]`))

	users := repo.List(ctx)
	require.Len(t, users, 1)
	assert.Equal(t, "plain123", users[0].LegacyPassword)
	assert.False(t, users[0].Versioned())
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	logger, _ := logtest.NewNullLogger()
	repo := NewSessionRepository(store, logger)

	user, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, repo.Save(ctx, &domain.User{ID: "42", Username: "alice"}))
	user, err = repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, repo.Clear(ctx))
	_, ok, _ := store.Get(ctx, storage.KeyCurrentUser)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, storage.KeyCurrentUser, "garbage"))
	user, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestPreferenceRepository(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	logger, _ := logtest.NewNullLogger()
	repo := NewPreferenceRepository(store, logger)

	_, ok := repo.Theme(ctx)
	assert.False(t, ok)

	require.NoError(t, repo.SetTheme(ctx, domain.ThemeDark))
	raw, _, _ := store.Get(ctx, storage.KeyTheme)
	assert.Equal(t, "dark", raw)

	theme, ok := repo.Theme(ctx)
	assert.True(t, ok)
	assert.Equal(t, domain.ThemeDark, theme)

	require.NoError(t, store.Set(ctx, storage.KeyTheme, "purple"))
	_, ok = repo.Theme(ctx)
	assert.False(t, ok)
}

func TestNoteRepository(t *testing.T) {
	ctx := context.Background()
	logger, _ := logtest.NewNullLogger()
	repo := NewNoteRepository(storage.NewMemory(), logger)

	assert.Nil(t, repo.Load(ctx))
	require.NoError(t, repo.Save(ctx, []domain.Note{{ID: 1, Title: "Buy milk"}}))
	notes := repo.Load(ctx)
	require.Len(t, notes, 1)
	assert.Equal(t, "Buy milk", notes[0].Title)
}
