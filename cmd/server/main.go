package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-notes/internal/app"
	"todo-notes/internal/config"
	apphttp "todo-notes/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup: %v", err)
	}
	defer a.Close()

	if cfg.Dev.Enabled && cfg.Dev.SeedFile != "" {
		a.Seed(ctx, cfg.Dev.SeedFile)
	}
	if a.Mailer == nil {
		logger.Warn("mail disabled, /api/send-email will report failures")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Options{
		Users:     a.Users,
		Sessions:  a.Sessions,
		Notes:     a.Notes,
		Themes:    a.Themes,
		Mailer:    a.Mailer,
		Logger:    logger,
		DevRoutes: cfg.Dev.Enabled,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s (storage: %s)", cfg.Server.Addr, cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"addr": cfg.Server.Addr}).Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
