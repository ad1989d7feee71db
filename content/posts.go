package content

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Post is a blog entry. Only published posts appear on the public site; the
// back office lists everything.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Body       string    `json:"body"`
	CoverImage string    `json:"cover_image,omitempty"`
	Published  bool      `json:"published"`
	AuthorID   string    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PostListOptions narrows and pages a post listing.
type PostListOptions struct {
	Offset        int
	Limit         int
	PublishedOnly bool
}

// PostRepo defines the interface for blog post storage operations.
type PostRepo interface {
	Upsert(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, opts PostListOptions) ([]*Post, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, publishedOnly bool) (int, error)
}

var slugStripper = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title. Non-alphanumeric runs collapse
// into single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripper.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
