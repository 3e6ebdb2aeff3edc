package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-notes/internal/notify"
	"todo-notes/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	sessions service.SessionService
	notes    service.NoteService
	themes   service.ThemeService
	mailer   notify.Mailer
	logger   *logrus.Logger
	dev      bool
}

type Options struct {
	Users    service.UserService
	Sessions service.SessionService
	Notes    service.NoteService
	Themes   service.ThemeService
	// Mailer may be nil when no relay is configured.
	Mailer notify.Mailer
	Logger *logrus.Logger
	// DevRoutes exposes the destructive developer utilities.
	DevRoutes bool
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &Handler{
		users:    opts.Users,
		sessions: opts.Sessions,
		notes:    opts.Notes,
		themes:   opts.Themes,
		mailer:   opts.Mailer,
		logger:   opts.Logger,
		dev:      opts.DevRoutes,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	api := router.Group("/api")
	{
		api.POST("/send-email", h.sendEmail)

		api.POST("/auth/signup", h.signup)
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)
		api.GET("/auth/me", h.me)

		api.GET("/theme", h.getTheme)
		api.PUT("/theme", h.setTheme)
		api.POST("/theme/toggle", h.toggleTheme)

		notes := api.Group("/notes", h.requireSession)
		{
			notes.GET("", h.listNotes)
			notes.POST("", h.createNote)
			notes.GET("/:id", h.getNote)
			notes.PUT("/:id", h.updateNote)
			notes.PATCH("/:id/toggle", h.toggleNote)
			notes.DELETE("/:id", h.deleteNote)
		}

		if h.dev {
			api.GET("/dev/users", h.listUsers)
			api.DELETE("/dev/users", h.clearUsers)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
