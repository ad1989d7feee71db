package repofakes

import (
	"context"
	"sort"
	"sync"

	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// FakeNoticeRepo is an in-memory implementation of content.NoticeRepo
type FakeNoticeRepo struct {
	mu   sync.RWMutex
	rows map[string]*content.Notice
}

// NewFakeNoticeRepo creates a new in-memory notice repository
func NewFakeNoticeRepo() *FakeNoticeRepo {
	return &FakeNoticeRepo{rows: make(map[string]*content.Notice)}
}

var _ content.NoticeRepo = (*FakeNoticeRepo)(nil)

func (r *FakeNoticeRepo) Upsert(_ context.Context, notice *content.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *notice
	r.rows[notice.ID] = &copied
	return nil
}

func (r *FakeNoticeRepo) GetByID(_ context.Context, id string) (*content.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *FakeNoticeRepo) List(_ context.Context, offset, limit int) ([]*content.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*content.Notice, 0, len(r.rows))
	for _, row := range r.rows {
		copied := *row
		all = append(all, &copied)
	}
	// Pinned first, then newest first
	sort.Slice(all, func(i, j int) bool {
		if all[i].Pinned != all[j].Pinned {
			return all[i].Pinned
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, offset, limit), nil
}

func (r *FakeNoticeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *FakeNoticeRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}
