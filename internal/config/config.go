package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Storage struct {
		Driver string
		Path   string
		DSN    string
		Redis  struct {
			Addr     string
			Password string
			DB       int
			Prefix   string
		}
		S3 struct {
			Bucket   string
			Prefix   string
			Region   string
			Endpoint string
		}
	}
	AWS struct {
		Profile string
	}
	Auth struct {
		HashAlgorithm string `mapstructure:"hash_algorithm"`
		NotifyOnLogin bool   `mapstructure:"notify_on_login"`
	}
	Notes struct {
		Persist bool
	}
	Mail struct {
		Enabled  bool
		Service  string
		Host     string
		Port     int
		User     string
		Password string
		From     string
		Workers  int
		Queue    int
		Retries  int
		Timeout  time.Duration
	}
	Dev struct {
		Enabled  bool
		SeedFile string `mapstructure:"seed_file"`
	}
}

// legacyEnv maps the unprefixed EMAIL_* relay variables onto config keys.
var legacyEnv = map[string]string{
	"mail.service":  "EMAIL_SERVICE",
	"mail.user":     "EMAIL_USER",
	"mail.password": "EMAIL_PASSWORD",
	"mail.from":     "EMAIL_FROM",
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// a missing .env is fine; variables already set win
	_ = godotenv.Load()
	return load(viper.New(), ".")
}

func load(v *viper.Viper, configPath string) (Config, error) {
	v.SetEnvPrefix("TODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "TODO_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(configPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "data/todo.db")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "todo:")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "todo-app")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("auth.hash_algorithm", "sha256")
	v.SetDefault("auth.notify_on_login", true)
	v.SetDefault("notes.persist", false)
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.service", "gmail")
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 0)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queue", 64)
	v.SetDefault("mail.retries", 0)
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("dev.enabled", false)
	v.SetDefault("dev.seed_file", "")
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "none", "redis":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
