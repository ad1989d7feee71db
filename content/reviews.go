package content

import (
	"context"
	"fmt"
	"time"
)

// Review is a customer review. Reviews appear publicly only after an admin
// approves them.
type Review struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Rating     int       `json:"rating"` // 1..5
	Body       string    `json:"body"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the review's user-supplied fields.
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if r.Body == "" {
		return fmt.Errorf("review body is required")
	}
	return nil
}

// ReviewListOptions narrows and pages a review listing.
type ReviewListOptions struct {
	Offset       int
	Limit        int
	ApprovedOnly bool
}

// ReviewRepo defines the interface for review storage operations.
type ReviewRepo interface {
	Upsert(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, opts ReviewListOptions) ([]*Review, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, approvedOnly bool) (int, error)
}
