package repofakes

import (
	"context"
	"sort"
	"sync"

	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// FakeReviewRepo is an in-memory implementation of content.ReviewRepo
type FakeReviewRepo struct {
	mu   sync.RWMutex
	rows map[string]*content.Review
}

// NewFakeReviewRepo creates a new in-memory review repository
func NewFakeReviewRepo() *FakeReviewRepo {
	return &FakeReviewRepo{rows: make(map[string]*content.Review)}
}

var _ content.ReviewRepo = (*FakeReviewRepo)(nil)

func (r *FakeReviewRepo) Upsert(_ context.Context, review *content.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *review
	r.rows[review.ID] = &copied
	return nil
}

func (r *FakeReviewRepo) GetByID(_ context.Context, id string) (*content.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *FakeReviewRepo) List(_ context.Context, opts content.ReviewListOptions) ([]*content.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*content.Review, 0, len(r.rows))
	for _, row := range r.rows {
		if opts.ApprovedOnly && !row.Approved {
			continue
		}
		copied := *row
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, opts.Offset, opts.Limit), nil
}

func (r *FakeReviewRepo) SetApproved(_ context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.Approved = approved
	return nil
}

func (r *FakeReviewRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *FakeReviewRepo) Count(_ context.Context, approvedOnly bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, row := range r.rows {
		if approvedOnly && !row.Approved {
			continue
		}
		count++
	}
	return count, nil
}
