package repofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/harubang/fengshui-site/auth"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// FakeUserRepo is an in-memory implementation of auth.UserRepo
type FakeUserRepo struct {
	mu    sync.RWMutex
	users map[string]*auth.User // id -> user
}

// NewFakeUserRepo creates a new in-memory user repository
func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]*auth.User),
	}
}

var _ auth.UserRepo = (*FakeUserRepo)(nil)

func (r *FakeUserRepo) Upsert(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *FakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *FakeUserRepo) List(_ context.Context, offset, limit int) ([]*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*auth.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *FakeUserRepo) SetLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.LastLogin = at
	return nil
}
