package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/acewatch/acewatch/internal/domain/user"
	"github.com/acewatch/acewatch/internal/platform/id"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

const minPasswordLength = 8

// AccountService owns registration, login and bearer-token
// verification. Session tokens are opaque random values; only their
// SHA-256 hash is persisted.
type AccountService struct {
	users      user.Repository
	ids        id.Generator
	sessionTTL time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

func NewAccountService(users user.Repository, ids id.Generator, sessionTTL time.Duration, logger *logging.Logger) *AccountService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if sessionTTL <= 0 {
		sessionTTL = 720 * time.Hour
	}

	return &AccountService{
		users:      users,
		ids:        ids,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, email, password string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "AccountService.Register")
	defer span.End()

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return user.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, exists, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return user.User{}, fmt.Errorf("check existing user: %w", err)
	} else if exists {
		return user.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.ids.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user id: %w", err)
	}

	u := user.User{
		ID:           userID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies credentials and opens a new session. The returned
// token is shown to the caller exactly once.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "AccountService.Login")
	defer span.End()

	email = normalizeEmail(email)
	u, exists, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("lookup user: %w", err)
	}
	if !exists {
		return "", time.Time{}, fmt.Errorf("%w: unknown email or wrong password", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: unknown email or wrong password", ErrUnauthorized)
	}

	token, err := id.NewToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate session token: %w", err)
	}

	expiresAt := s.now().UTC().Add(s.sessionTTL)
	session := user.Session{
		TokenHash: hashToken(token),
		UserID:    u.ID,
		ExpiresAt: expiresAt,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.SaveSession(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}

	if err := s.users.DeleteExpiredSessions(ctx); err != nil {
		s.logger.DebugContext(ctx, "expired session cleanup failed", "error", err)
	}

	return token, expiresAt, nil
}

// VerifyAccessToken resolves a bearer token to its principal. It backs
// the HTTP auth middleware.
func (s *AccountService) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	ctx, span := startUsecaseSpan(ctx, "AccountService.VerifyAccessToken")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	session, exists, err := s.users.GetSession(ctx, hashToken(token))
	if err != nil {
		return user.Principal{}, fmt.Errorf("lookup session: %w", err)
	}
	if !exists || session.ExpiresAt.Before(s.now()) {
		return user.Principal{}, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}

	u, exists, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("lookup user: %w", err)
	}
	if !exists {
		return user.Principal{}, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	}

	return user.Principal{UserID: u.ID, Email: u.Email}, nil
}

func (s *AccountService) Logout(ctx context.Context, token string) error {
	ctx, span := startUsecaseSpan(ctx, "AccountService.Logout")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.users.DeleteSession(ctx, hashToken(token))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
