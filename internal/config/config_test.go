package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "data/todo.db", cfg.Storage.Path)
	assert.Equal(t, "todo:", cfg.Storage.Redis.Prefix)
	assert.Equal(t, "sha256", cfg.Auth.HashAlgorithm)
	assert.True(t, cfg.Auth.NotifyOnLogin)
	assert.False(t, cfg.Notes.Persist)
	assert.False(t, cfg.Mail.Enabled)
	assert.Equal(t, "gmail", cfg.Mail.Service)
	assert.Equal(t, 2, cfg.Mail.Workers)
	assert.Equal(t, 15*time.Second, cfg.Mail.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TODO_STORAGE_DRIVER", "memory")
	t.Setenv("TODO_AUTH_HASH_ALGORITHM", "bcrypt")
	t.Setenv("TODO_MAIL_TIMEOUT", "3s")
	t.Setenv("EMAIL_USER", "relay@example.com")
	t.Setenv("EMAIL_SERVICE", "outlook")

	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "bcrypt", cfg.Auth.HashAlgorithm)
	assert.Equal(t, 3*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, "relay@example.com", cfg.Mail.User)
	assert.Equal(t, "outlook", cfg.Mail.Service)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
storage:
  driver: redis
  redis:
    addr: cache:6379
notes:
  persist: true
dev:
  enabled: true
  seed_file: seed-users.json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Storage.Redis.Addr)
	assert.True(t, cfg.Notes.Persist)
	assert.True(t, cfg.Dev.Enabled)
	assert.Equal(t, "seed-users.json", cfg.Dev.SeedFile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"sqlite", func(c *Config) { c.Storage.Driver = "sqlite" }, false},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, true},
		{"postgres with dsn", func(c *Config) { c.Storage.Driver = "postgres"; c.Storage.DSN = "postgres://x" }, false},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = "s3" }, true},
		{"unknown", func(c *Config) { c.Storage.Driver = "floppy" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
