package repofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// FakeQuestionRepo is an in-memory implementation of content.QuestionRepo
type FakeQuestionRepo struct {
	mu   sync.RWMutex
	rows map[string]*content.Question
}

// NewFakeQuestionRepo creates a new in-memory question repository
func NewFakeQuestionRepo() *FakeQuestionRepo {
	return &FakeQuestionRepo{rows: make(map[string]*content.Question)}
}

var _ content.QuestionRepo = (*FakeQuestionRepo)(nil)

func (r *FakeQuestionRepo) Upsert(_ context.Context, question *content.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *question
	r.rows[question.ID] = &copied
	return nil
}

func (r *FakeQuestionRepo) GetByID(_ context.Context, id string) (*content.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *FakeQuestionRepo) List(_ context.Context, opts content.QuestionListOptions) ([]*content.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*content.Question, 0, len(r.rows))
	for _, row := range r.rows {
		if opts.AuthorID != "" && row.AuthorID != opts.AuthorID {
			continue
		}
		copied := *row
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, opts.Offset, opts.Limit), nil
}

func (r *FakeQuestionRepo) SetAnswer(_ context.Context, id, answer string, answeredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.Answer = answer
	row.AnsweredAt = answeredAt
	return nil
}

func (r *FakeQuestionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *FakeQuestionRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}
