package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"todo-notes/internal/domain"
	"todo-notes/internal/password"
	"todo-notes/internal/repository"
)

var (
	// ErrAlreadyExists is returned when registering a taken username or email.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound indicates no account matches the given username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned for blank or malformed fields.
	ErrInvalidInput = errors.New("invalid input")
)

// SeedUser is one entry of a seed file.
type SeedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService owns the durable user collection and password verification.
type UserService interface {
	ListUsers(ctx context.Context) []domain.User
	FindUser(ctx context.Context, username string) (*domain.User, bool)
	FindByEmail(ctx context.Context, email string) (*domain.User, bool)
	GetByID(ctx context.Context, id string) (*domain.User, bool)
	SaveUsers(ctx context.Context, users []domain.User) error
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	ClearUsers(ctx context.Context) error
	SeedUsers(ctx context.Context, seeds []SeedUser) (int, error)
}

type UserServiceConfig struct {
	Hasher password.Hasher
	Logger *logrus.Logger
	Now    func() time.Time
}

type userService struct {
	users  repository.UserRepository
	hasher password.Hasher
	logger logrus.FieldLogger
	now    func() time.Time

	// serializes read-modify-write of the collection within this process
	mu sync.Mutex
}

func NewUserService(users repository.UserRepository, cfg UserServiceConfig) UserService {
	if cfg.Hasher == nil {
		cfg.Hasher = password.SHA256{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &userService{
		users:  users,
		hasher: cfg.Hasher,
		logger: cfg.Logger.WithField("component", "credentials"),
		now:    cfg.Now,
	}
}

func (s *userService) ListUsers(ctx context.Context) []domain.User {
	return s.users.List(ctx)
}

func (s *userService) FindUser(ctx context.Context, username string) (*domain.User, bool) {
	return findUser(s.users.List(ctx), func(u domain.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*domain.User, bool) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false
	}
	return findUser(s.users.List(ctx), func(u domain.User) bool {
		return u.Email != "" && strings.EqualFold(u.Email, email)
	})
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, bool) {
	return findUser(s.users.List(ctx), func(u domain.User) bool {
		return u.ID == id
	})
}

func (s *userService) SaveUsers(ctx context.Context, users []domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.Save(ctx, users)
}

func (s *userService) Register(ctx context.Context, username, email, pass string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || pass == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.users.List(ctx)
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return nil, ErrAlreadyExists
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			return nil, fmt.Errorf("%w: email already registered", ErrAlreadyExists)
		}
	}

	credential, err := s.newCredential(pass)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:         nextID(users, now),
		Username:   username,
		Email:      email,
		Credential: credential,
		CreatedAt:  now,
	}

	if err := s.users.Save(ctx, append(users, user)); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}
	s.logger.WithField("user_id", user.ID).Info("user registered")
	return &user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, pass string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.users.List(ctx)
	idx := -1
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUserNotFound
	}
	user := users[idx]

	if user.Versioned() {
		hasher, err := password.New(user.Credential.Algorithm)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Error("stored credential uses unknown algorithm")
			return nil, ErrInvalidCredentials
		}
		if !hasher.Verify(user.Credential.Hash, pass) {
			return nil, ErrInvalidCredentials
		}
		if hasher.Algorithm() != s.hasher.Algorithm() {
			s.upgrade(ctx, users, idx, pass, logrus.Fields{"from": hasher.Algorithm()})
		}
		return &users[idx], nil
	}

	format, ok := password.VerifyLegacy(user.LegacyPassword, pass)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	s.upgrade(ctx, users, idx, pass, logrus.Fields{
		"from":         "legacy-" + format,
		"looks_hashed": password.LooksHashed(user.LegacyPassword),
	})
	return &users[idx], nil
}

// upgrade rewrites users[idx] with a credential from the configured hasher.
// Failures are logged; the login that triggered it still succeeds.
func (s *userService) upgrade(ctx context.Context, users []domain.User, idx int, pass string, fields logrus.Fields) {
	log := s.logger.WithFields(fields).WithField("user_id", users[idx].ID)

	credential, err := s.newCredential(pass)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade stored password")
		return
	}

	upgraded := make([]domain.User, len(users))
	copy(upgraded, users)
	upgraded[idx].Credential = credential
	upgraded[idx].LegacyPassword = ""

	if err := s.users.Save(ctx, upgraded); err != nil {
		log.WithError(err).Warn("failed to upgrade stored password")
		return
	}
	users[idx] = upgraded[idx]
	log.Info("stored password upgraded")
}

func (s *userService) newCredential(pass string) (*domain.Credential, error) {
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}
	if password.Insecure(s.hasher) {
		s.logger.Warn("passwords are stored with a reversible encoding, configure sha256 or bcrypt")
	}
	return &domain.Credential{
		Version:   domain.CredentialVersion,
		Algorithm: s.hasher.Algorithm(),
		Hash:      hash,
	}, nil
}

func (s *userService) ClearUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.users.Clear(ctx); err != nil {
		return err
	}
	s.logger.Warn("all users cleared")
	return nil
}

// SeedUsers registers the seeds only when the collection is empty. A seed that
// fails to register is logged and skipped.
func (s *userService) SeedUsers(ctx context.Context, seeds []SeedUser) (int, error) {
	if len(s.users.List(ctx)) > 0 {
		return 0, nil
	}
	created := 0
	for _, seed := range seeds {
		if _, err := s.Register(ctx, seed.Username, seed.Email, seed.Password); err != nil {
			s.logger.WithError(err).WithField("username", seed.Username).Warn("failed to seed user")
			continue
		}
		created++
	}
	return created, nil
}

func findUser(users []domain.User, match func(domain.User) bool) (*domain.User, bool) {
	for i := range users {
		if match(users[i]) {
			u := users[i]
			return &u, true
		}
	}
	return nil, false
}

// nextID derives an id from the creation time in milliseconds, bumped past
// any id already taken.
func nextID(users []domain.User, now time.Time) string {
	taken := make(map[string]struct{}, len(users))
	for _, u := range users {
		taken[u.ID] = struct{}{}
	}
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}
