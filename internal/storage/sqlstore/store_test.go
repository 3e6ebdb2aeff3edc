package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db, SQLite)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	require.NoError(t, s.Set(ctx, "theme", "light"))

	v, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)

	require.NoError(t, s.Set(ctx, "currentUser", `{"id":"1"}`))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"currentUser", "theme"}, keys)

	require.NoError(t, s.Remove(ctx, "theme"))
	require.NoError(t, s.Remove(ctx, "theme"))
	_, ok, err = s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Rebind(t *testing.T) {
	pg := New(nil, Postgres)
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := New(nil, SQLite)
	assert.Equal(t, "SELECT a FROM t WHERE x = ?", lite.rebind("SELECT a FROM t WHERE x = ?"))
}

func TestStore_SetWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (name, value, updated_at)`)).
		WithArgs("todo_app_users", "[]", sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	s := New(db, SQLite)
	err = s.Set(context.Background(), "todo_app_users", "[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert todo_app_users")
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetPostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE name = $1`)).
		WithArgs("theme").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("dark"))

	s := New(db, Postgres)
	v, ok, err := s.Get(context.Background(), "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
	require.NoError(t, mock.ExpectationsWereMet())
}
