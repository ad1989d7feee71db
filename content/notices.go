package content

import (
	"context"
	"time"
)

// Notice is an announcement shown on the notice board. Pinned notices sort
// before the rest.
type Notice struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoticeRepo defines the interface for notice storage operations.
type NoticeRepo interface {
	Upsert(ctx context.Context, notice *Notice) error
	GetByID(ctx context.Context, id string) (*Notice, error)
	List(ctx context.Context, offset, limit int) ([]*Notice, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
