package repofakes

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/harubang/fengshui-site/internal/errors"
	"github.com/harubang/fengshui-site/profiles"
)

// FakeProfileRepo is an in-memory implementation of profiles.Repo
type FakeProfileRepo struct {
	mu       sync.RWMutex
	rows     map[string]*profiles.Profile
	QueryErr error // when set, every read fails with this error
}

// NewFakeProfileRepo creates a new in-memory profile repository
func NewFakeProfileRepo() *FakeProfileRepo {
	return &FakeProfileRepo{
		rows: make(map[string]*profiles.Profile),
	}
}

var _ profiles.Repo = (*FakeProfileRepo)(nil)

func (r *FakeProfileRepo) Upsert(_ context.Context, profile *profiles.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *profile
	r.rows[profile.ID] = &copied
	return nil
}

func (r *FakeProfileRepo) GetByID(_ context.Context, id string) (*profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.QueryErr != nil {
		return nil, r.QueryErr
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *FakeProfileRepo) List(_ context.Context, offset, limit int) ([]*profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.QueryErr != nil {
		return nil, r.QueryErr
	}
	all := make([]*profiles.Profile, 0, len(r.rows))
	for _, row := range r.rows {
		copied := *row
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

func (r *FakeProfileRepo) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.IsAdmin = isAdmin
	return nil
}

func (r *FakeProfileRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.QueryErr != nil {
		return 0, r.QueryErr
	}
	return len(r.rows), nil
}
