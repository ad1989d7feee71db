package repofakes

import (
	"context"
	"sort"
	"sync"

	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// FakePostRepo is an in-memory implementation of content.PostRepo
type FakePostRepo struct {
	mu   sync.RWMutex
	rows map[string]*content.Post
}

// NewFakePostRepo creates a new in-memory post repository
func NewFakePostRepo() *FakePostRepo {
	return &FakePostRepo{rows: make(map[string]*content.Post)}
}

var _ content.PostRepo = (*FakePostRepo)(nil)

func (r *FakePostRepo) Upsert(_ context.Context, post *content.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *post
	r.rows[post.ID] = &copied
	return nil
}

func (r *FakePostRepo) GetByID(_ context.Context, id string) (*content.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *FakePostRepo) GetBySlug(_ context.Context, slug string) (*content.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if row.Slug == slug {
			copied := *row
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *FakePostRepo) List(_ context.Context, opts content.PostListOptions) ([]*content.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*content.Post, 0, len(r.rows))
	for _, row := range r.rows {
		if opts.PublishedOnly && !row.Published {
			continue
		}
		copied := *row
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, opts.Offset, opts.Limit), nil
}

func (r *FakePostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *FakePostRepo) Count(_ context.Context, publishedOnly bool) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, row := range r.rows {
		if publishedOnly && !row.Published {
			continue
		}
		count++
	}
	return count, nil
}

// page applies offset/limit pagination to a sorted slice.
func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
