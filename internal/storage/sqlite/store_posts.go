package sqlite

import (
	"context"
	"database/sql"

	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// PostStore implements content.PostRepo.
type PostStore struct {
	db *sql.DB
}

var _ content.PostRepo = (*PostStore)(nil)

const postColumns = `id, title, slug, body, cover_image, published, author_id, created_at, updated_at`

func (s *PostStore) Upsert(ctx context.Context, post *content.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			slug = excluded.slug,
			body = excluded.body,
			cover_image = excluded.cover_image,
			published = excluded.published,
			updated_at = excluded.updated_at`,
		post.ID, post.Title, post.Slug, post.Body, post.CoverImage,
		boolToInt(post.Published), post.AuthorID,
		toMillis(post.CreatedAt), toMillis(post.UpdatedAt))
	if err != nil {
		return apperrors.Wrapf(err, "upsert post")
	}
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*content.Post, error) {
	return s.getPost(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*content.Post, error) {
	return s.getPost(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

func (s *PostStore) getPost(ctx context.Context, query string, arg any) (*content.Post, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	post, err := scanPost(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan post")
	}
	return post, nil
}

func (s *PostStore) List(ctx context.Context, opts content.PostListOptions) ([]*content.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	args := []any{}
	if opts.PublishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrapf(err, "list posts")
	}
	defer rows.Close()

	var posts []*content.Post
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrapf(err, "scan post row")
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return apperrors.Wrapf(err, "delete post")
	}
	return nil
}

func (s *PostStore) Count(ctx context.Context, publishedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM posts`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.Wrapf(err, "count posts")
	}
	return count, nil
}

func scanPost(scan func(dest ...any) error) (*content.Post, error) {
	var (
		post      content.Post
		published int64
		createdAt int64
		updatedAt int64
	)
	err := scan(&post.ID, &post.Title, &post.Slug, &post.Body, &post.CoverImage,
		&published, &post.AuthorID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	post.Published = published != 0
	post.CreatedAt = fromMillis(createdAt)
	post.UpdatedAt = fromMillis(updatedAt)
	return &post, nil
}
