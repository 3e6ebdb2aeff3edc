package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"todo-notes/internal/domain"
	"todo-notes/internal/notify"
	"todo-notes/internal/repository"
)

// ErrorKind classifies a failed auth operation for presentation.
type ErrorKind string

const (
	KindAlreadyExists      ErrorKind = "already_exists"
	KindUserNotFound       ErrorKind = "user_not_found"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindInvalidInput       ErrorKind = "invalid_input"
	// KindStorageUnavailable is reserved for stores that report outages;
	// the kv repositories degrade an unavailable store to a logged no-op.
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindInternal           ErrorKind = "internal"
)

// Result is the outcome of Signup and Login. User never carries password material.
type Result struct {
	Success bool         `json:"success"`
	Kind    ErrorKind    `json:"kind,omitempty"`
	Message string       `json:"message"`
	User    *domain.User `json:"user,omitempty"`
}

type SignupInput struct {
	Username        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

var signupValidator = validator.New(validator.WithRequiredStructEnabled())

var signupMessages = map[string]string{
	"Username":        "Username is required",
	"Email":           "Invalid email address",
	"Password":        "Password must be at least 6 characters",
	"ConfirmPassword": "Passwords do not match",
}

// validate reports the message for the first failing field, in field order.
func (in SignupInput) validate() string {
	err := signupValidator.Struct(in)
	if err == nil {
		return ""
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := signupMessages[fieldErrs[0].Field()]; ok {
			return msg
		}
	}
	return err.Error()
}

// SessionService tracks the signed-in user and persists it as the session pointer.
type SessionService interface {
	Signup(ctx context.Context, in SignupInput) Result
	Login(ctx context.Context, identifier, password string) Result
	Logout(ctx context.Context) error
	Current() *domain.User
	Restore(ctx context.Context)
}

type SessionServiceConfig struct {
	Notifier      notify.Notifier
	NotifyOnLogin bool
	Logger        *logrus.Logger
	Now           func() time.Time
}

type sessionService struct {
	users    UserService
	sessions repository.SessionRepository
	notifier notify.Notifier
	onLogin  bool
	logger   logrus.FieldLogger
	now      func() time.Time

	mu      sync.RWMutex
	current *domain.User
}

func NewSessionService(users UserService, sessions repository.SessionRepository, cfg SessionServiceConfig) SessionService {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Noop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &sessionService{
		users:    users,
		sessions: sessions,
		notifier: cfg.Notifier,
		onLogin:  cfg.NotifyOnLogin,
		logger:   cfg.Logger.WithField("component", "session"),
		now:      cfg.Now,
	}
}

func (s *sessionService) Signup(ctx context.Context, in SignupInput) Result {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if msg := in.validate(); msg != "" {
		return Result{Kind: KindInvalidInput, Message: msg}
	}

	user, err := s.users.Register(ctx, in.Username, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return Result{Kind: KindAlreadyExists, Message: "User with this username or email already exists. Please login."}
		}
		return s.failure(err, "signup failed")
	}

	public, err := s.commit(ctx, user)
	if err != nil {
		return s.failure(err, "signup failed")
	}

	if user.Email != "" {
		email, err := notify.WelcomeEmail(user.Email, notify.DisplayName(user.Username, user.Email))
		if err != nil {
			s.logger.WithError(err).Error("failed to render welcome email")
		} else {
			s.notifier.Notify(email)
		}
	}
	return Result{Success: true, Message: "Signed up successfully", User: public}
}

func (s *sessionService) Login(ctx context.Context, identifier, password string) Result {
	identifier = strings.TrimSpace(identifier)
	invalid := Result{Kind: KindInvalidCredentials, Message: "Invalid email or password."}
	if identifier == "" || password == "" {
		return invalid
	}

	username := identifier
	if u, ok := s.users.FindByEmail(ctx, identifier); ok {
		username = u.Username
	}

	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidCredentials) {
			s.logger.WithError(err).Debug("login rejected")
			return invalid
		}
		return s.failure(err, "login failed")
	}

	public, err := s.commit(ctx, user)
	if err != nil {
		return s.failure(err, "login failed")
	}

	if s.onLogin && user.Email != "" {
		email, err := notify.SignInEmail(user.Email, notify.DisplayName(user.Username, user.Email), s.now())
		if err != nil {
			s.logger.WithError(err).Error("failed to render sign-in email")
		} else {
			s.notifier.Notify(email)
		}
	}
	return Result{Success: true, Message: "Signed in successfully", User: public}
}

// commit stores the full record as the session pointer and exposes a sanitized copy.
func (s *sessionService) commit(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.sessions.Save(ctx, user); err != nil {
		return nil, err
	}
	public := user.Sanitized()

	s.mu.Lock()
	s.current = &public
	s.mu.Unlock()

	out := public
	return &out, nil
}

// Logout removes the stored pointer first; on failure the user stays signed in.
func (s *sessionService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return nil
}

func (s *sessionService) Current() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Restore rehydrates the current user from the stored pointer. A pointer to a
// user that is missing from the collection is still honored.
func (s *sessionService) Restore(ctx context.Context) {
	user, err := s.sessions.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to restore session")
		return
	}

	var public *domain.User
	if user != nil {
		if _, ok := s.users.GetByID(ctx, user.ID); !ok {
			s.logger.WithField("user_id", user.ID).Warn("session points to a user missing from the collection")
		}
		u := user.Sanitized()
		public = &u
	}

	s.mu.Lock()
	s.current = public
	s.mu.Unlock()
}

func (s *sessionService) failure(err error, msg string) Result {
	s.logger.WithError(err).Error(msg)
	if errors.Is(err, ErrInvalidInput) {
		return Result{Kind: KindInvalidInput, Message: err.Error()}
	}
	return Result{Kind: KindInternal, Message: "Something went wrong."}
}
