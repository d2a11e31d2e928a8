package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
)

// AuthService password login and session lifecycle
type AuthService struct {
	users    repository.UsersRepository
	sessions SessionStore
	ttl      time.Duration
	logger   *zap.Logger

	now      func() time.Time
	hashCost int

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repository.UsersRepository, sessions SessionStore, ttl time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials and opens a session. Unknown email and wrong
// password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalidf("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError("load user", err)
		}
		// same bcrypt cost as a real miss
		CheckPasswordHash(password, s.dummyPasswordHash())
		s.logger.Warn("Login failed",
			zap.String("email", email),
			zap.String("reason", "unknown_email"),
		)
		return nil, ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		s.logger.Warn("Login failed",
			zap.String("email", email),
			zap.String("reason", "wrong_password"),
		)
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := domain.Session{
		Token:     uuid.NewString(),
		User:      user.SessionUser(),
		CreatedAt: now,
	}
	if s.ttl > 0 {
		sess.ExpiresAt = now.Add(s.ttl)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, storeError("save session", err)
	}
	s.logger.Info("User logged in",
		zap.String("uid", user.UID),
		zap.Bool("is_admin", user.IsAdmin),
	)
	return &sess, nil
}

// Logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return storeError("delete session", err)
	}
	return nil
}

// CurrentUser returns nil, nil when there is no live session for token.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.SessionUser, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, storeError("load session", err)
	}
	if sess == nil {
		return nil, nil
	}
	u := sess.User
	return &u, nil
}

// EnsureUser creates or overwrites an account (seed admin, admin CLI).
func (s *AuthService) EnsureUser(ctx context.Context, email, password, username string, isAdmin bool) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, invalidf("email and password are required")
	}
	if strings.TrimSpace(username) == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	hash, err := HashPassword(password, s.hashCost)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.users.Upsert(ctx, domain.User{
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return domain.User{}, storeError("save user", err)
	}
	return u, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = HashPassword(uuid.NewString(), s.hashCost)
	})
	return s.dummyHash
}
