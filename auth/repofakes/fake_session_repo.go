package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/harubang/fengshui-site/auth"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// FakeSessionRepo is an in-memory implementation of auth.SessionRepo
type FakeSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*auth.Session // refresh token -> session
}

// NewFakeSessionRepo creates a new in-memory session repository
func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*auth.Session),
	}
}

var _ auth.SessionRepo = (*FakeSessionRepo)(nil)

func (r *FakeSessionRepo) Upsert(_ context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.RefreshToken] = &copied
	return nil
}

func (r *FakeSessionRepo) GetByRefreshToken(_ context.Context, refreshToken string) (*auth.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[refreshToken]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *FakeSessionRepo) DeleteByRefreshToken(_ context.Context, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, refreshToken)
	return nil
}

func (r *FakeSessionRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func (r *FakeSessionRepo) DeleteExpired(_ context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, session := range r.sessions {
		if session.RefreshExpiresAt.Before(cutoff) {
			delete(r.sessions, token)
		}
	}
	return nil
}

// Len reports the number of stored sessions (test helper).
func (r *FakeSessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
