package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"todo-notes/internal/config"
	"todo-notes/internal/storage"
	"todo-notes/internal/storage/sqlstore"
)

// OpenStore opens the backend selected by storage.driver. The returned closer may be nil.
func OpenStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Store, func() error, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on exit")
		return storage.NewMemory(), nil, nil

	case "none":
		logger.Warn("storage disabled, writes are ignored")
		return storage.Unavailable{}, nil, nil

	case "sqlite", "":
		db, err := sqlstore.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		store := sqlstore.New(db, sqlstore.SQLite)
		if err := store.Init(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Infof("using sqlite storage at %s", cfg.Storage.Path)
		return store, db.Close, nil

	case "postgres":
		db, err := sqlstore.OpenPostgres(cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := sqlstore.New(db, sqlstore.Postgres)
		if err := store.Init(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage")
		return store, db.Close, nil

	case "redis":
		store := storage.NewRedisStore(storage.RedisOptions{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
		})
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Infof("using redis storage at %s", cfg.Storage.Redis.Addr)
		return store, store.Close, nil

	case "s3":
		store, err := buildS3Store(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.S3.Bucket, cfg.Storage.S3.Region)
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func buildS3Store(ctx context.Context, cfg config.Config) (storage.Store, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
			o.UsePathStyle = true
		}
	})
	return storage.NewS3Store(client, cfg.Storage.S3.Bucket, cfg.Storage.S3.Prefix)
}
