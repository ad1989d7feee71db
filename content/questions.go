package content

import (
	"context"
	"time"
)

// Question is a consultation question on the Q&A board. Private questions
// are visible only to their author and admins. An answered question carries
// the admin's answer and the time it was given.
type Question struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Answer     string    `json:"answer,omitempty"`
	AnsweredAt time.Time `json:"answered_at,omitempty"`
	Private    bool      `json:"private"`
	CreatedAt  time.Time `json:"created_at"`
}

// Answered reports whether an admin has answered the question.
func (q *Question) Answered() bool {
	return q.Answer != ""
}

// QuestionListOptions narrows and pages a question listing.
type QuestionListOptions struct {
	Offset   int
	Limit    int
	AuthorID string // restrict to one author when set
}

// QuestionRepo defines the interface for Q&A storage operations.
type QuestionRepo interface {
	Upsert(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	List(ctx context.Context, opts QuestionListOptions) ([]*Question, error)
	SetAnswer(ctx context.Context, id, answer string, answeredAt time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
