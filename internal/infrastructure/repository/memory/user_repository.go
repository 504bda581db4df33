package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/acewatch/acewatch/internal/domain/user"
)

type UserRepository struct {
	mu           sync.RWMutex
	usersByID    map[string]user.User
	usersByEmail map[string]string
	sessions     map[string]user.Session
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		usersByID:    make(map[string]user.User),
		usersByEmail: make(map[string]string),
		sessions:     make(map[string]user.Session),
	}
}

func (r *UserRepository) CreateUser(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usersByID[u.ID] = u
	r.usersByEmail[strings.ToLower(u.Email)] = u.ID
	return nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, false, nil
	}
	u, ok := r.usersByID[id]
	return u, ok, nil
}

func (r *UserRepository) GetUserByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.usersByID[id]
	return u, ok, nil
}

func (r *UserRepository) SaveSession(_ context.Context, s user.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.TokenHash] = s
	return nil
}

func (r *UserRepository) GetSession(_ context.Context, tokenHash string) (user.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[tokenHash]
	return s, ok, nil
}

func (r *UserRepository) DeleteSession(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, tokenHash)
	return nil
}

func (r *UserRepository) DeleteExpiredSessions(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for hash, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, hash)
		}
	}
	return nil
}
