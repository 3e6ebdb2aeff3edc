// Package app wires configuration, storage and services for the binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"todo-notes/internal/config"
	"todo-notes/internal/notify"
	"todo-notes/internal/password"
	"todo-notes/internal/repository/kv"
	"todo-notes/internal/service"
	"todo-notes/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired services. Close stops the notifier and releases the storage backend.
type App struct {
	Config     config.Config
	Logger     *logrus.Logger
	Store      storage.Store
	Users      service.UserService
	Sessions   service.SessionService
	Notes      service.NoteService
	Themes     service.ThemeService
	Mailer     notify.Mailer
	// Dispatcher is nil when mail is disabled.
	Dispatcher *notify.Dispatcher

	closers []func() error
}

func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// New builds every service on top of the configured storage. With mail
// enabled, account notifications go through a started Dispatcher; otherwise
// they are dropped.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*App, error) {
	store, closer, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Store: store}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	hasher, err := password.New(cfg.Auth.HashAlgorithm)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Mail.Enabled {
		mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Service:  cfg.Mail.Service,
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.User,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("setup mailer: %w", err)
		}
		a.Mailer = mailer
		a.Dispatcher = notify.NewDispatcher(notify.DispatcherConfig{
			Workers:     cfg.Mail.Workers,
			QueueSize:   cfg.Mail.Queue,
			MaxRetries:  cfg.Mail.Retries,
			SendTimeout: cfg.Mail.Timeout,
			Logger:      logger,
		}, mailer)
		a.Dispatcher.Start(context.WithoutCancel(ctx))
	}

	var notifier notify.Notifier = notify.Noop{}
	if a.Dispatcher != nil {
		notifier = a.Dispatcher
	}

	a.Users = service.NewUserService(kv.NewUserRepository(store, logger), service.UserServiceConfig{
		Hasher: hasher,
		Logger: logger,
	})
	a.Sessions = service.NewSessionService(a.Users, kv.NewSessionRepository(store, logger), service.SessionServiceConfig{
		Notifier:      notifier,
		NotifyOnLogin: cfg.Auth.NotifyOnLogin,
		Logger:        logger,
	})
	a.Sessions.Restore(ctx)

	noteCfg := service.NoteServiceConfig{Logger: logger}
	if cfg.Notes.Persist {
		noteCfg.Repository = kv.NewNoteRepository(store, logger)
	}
	a.Notes = service.NewNoteService(ctx, noteCfg)
	a.Themes = service.NewThemeService(kv.NewPreferenceRepository(store, logger))

	return a, nil
}

func (a *App) Close() {
	if a.Dispatcher != nil {
		if err := a.Dispatcher.Shutdown(shutdownTimeout); err != nil {
			a.Logger.Warnf("notifier shutdown: %v", err)
		}
		a.Dispatcher = nil
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.Logger.Warnf("close: %v", err)
		}
	}
	a.closers = nil
}
