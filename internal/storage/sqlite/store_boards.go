package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// NoticeStore implements content.NoticeRepo.
type NoticeStore struct {
	db *sql.DB
}

var _ content.NoticeRepo = (*NoticeStore)(nil)

func (s *NoticeStore) Upsert(ctx context.Context, notice *content.Notice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices (id, title, body, pinned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			pinned = excluded.pinned,
			updated_at = excluded.updated_at`,
		notice.ID, notice.Title, notice.Body, boolToInt(notice.Pinned),
		toMillis(notice.CreatedAt), toMillis(notice.UpdatedAt))
	if err != nil {
		return apperrors.Wrapf(err, "upsert notice")
	}
	return nil
}

func (s *NoticeStore) GetByID(ctx context.Context, id string) (*content.Notice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, body, pinned, created_at, updated_at FROM notices WHERE id = ?`, id)

	var (
		notice    content.Notice
		pinned    int64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&notice.ID, &notice.Title, &notice.Body, &pinned, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan notice")
	}
	notice.Pinned = pinned != 0
	notice.CreatedAt = fromMillis(createdAt)
	notice.UpdatedAt = fromMillis(updatedAt)
	return &notice, nil
}

func (s *NoticeStore) List(ctx context.Context, offset, limit int) ([]*content.Notice, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, pinned, created_at, updated_at
		FROM notices ORDER BY pinned DESC, created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, apperrors.Wrapf(err, "list notices")
	}
	defer rows.Close()

	var notices []*content.Notice
	for rows.Next() {
		var (
			notice    content.Notice
			pinned    int64
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&notice.ID, &notice.Title, &notice.Body, &pinned, &createdAt, &updatedAt); err != nil {
			return nil, apperrors.Wrapf(err, "scan notice row")
		}
		notice.Pinned = pinned != 0
		notice.CreatedAt = fromMillis(createdAt)
		notice.UpdatedAt = fromMillis(updatedAt)
		notices = append(notices, &notice)
	}
	return notices, rows.Err()
}

func (s *NoticeStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notices WHERE id = ?`, id); err != nil {
		return apperrors.Wrapf(err, "delete notice")
	}
	return nil
}

func (s *NoticeStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notices`).Scan(&count); err != nil {
		return 0, apperrors.Wrapf(err, "count notices")
	}
	return count, nil
}

// QuestionStore implements content.QuestionRepo.
type QuestionStore struct {
	db *sql.DB
}

var _ content.QuestionRepo = (*QuestionStore)(nil)

const questionColumns = `id, author_id, author_name, title, body, answer, answered_at, private, created_at`

func (s *QuestionStore) Upsert(ctx context.Context, question *content.Question) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			answer = excluded.answer,
			answered_at = excluded.answered_at,
			private = excluded.private`,
		question.ID, question.AuthorID, question.AuthorName, question.Title, question.Body,
		question.Answer, toMillis(question.AnsweredAt), boolToInt(question.Private),
		toMillis(question.CreatedAt))
	if err != nil {
		return apperrors.Wrapf(err, "upsert question")
	}
	return nil
}

func (s *QuestionStore) GetByID(ctx context.Context, id string) (*content.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	question, err := scanQuestion(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan question")
	}
	return question, nil
}

func (s *QuestionStore) List(ctx context.Context, opts content.QuestionListOptions) ([]*content.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions`
	args := []any{}
	if opts.AuthorID != "" {
		query += ` WHERE author_id = ?`
		args = append(args, opts.AuthorID)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrapf(err, "list questions")
	}
	defer rows.Close()

	var questions []*content.Question
	for rows.Next() {
		question, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrapf(err, "scan question row")
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func (s *QuestionStore) SetAnswer(ctx context.Context, id, answer string, answeredAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE questions SET answer = ?, answered_at = ? WHERE id = ?`,
		answer, toMillis(answeredAt), id)
	if err != nil {
		return apperrors.Wrapf(err, "set answer")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
		return apperrors.Wrapf(err, "delete question")
	}
	return nil
}

func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, apperrors.Wrapf(err, "count questions")
	}
	return count, nil
}

func scanQuestion(scan func(dest ...any) error) (*content.Question, error) {
	var (
		question   content.Question
		answeredAt int64
		private    int64
		createdAt  int64
	)
	err := scan(&question.ID, &question.AuthorID, &question.AuthorName, &question.Title,
		&question.Body, &question.Answer, &answeredAt, &private, &createdAt)
	if err != nil {
		return nil, err
	}
	question.AnsweredAt = fromMillis(answeredAt)
	question.Private = private != 0
	question.CreatedAt = fromMillis(createdAt)
	return &question, nil
}

// ReviewStore implements content.ReviewRepo.
type ReviewStore struct {
	db *sql.DB
}

var _ content.ReviewRepo = (*ReviewStore)(nil)

func (s *ReviewStore) Upsert(ctx context.Context, review *content.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, author_id, author_name, rating, body, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rating = excluded.rating,
			body = excluded.body,
			approved = excluded.approved`,
		review.ID, review.AuthorID, review.AuthorName, review.Rating, review.Body,
		boolToInt(review.Approved), toMillis(review.CreatedAt))
	if err != nil {
		return apperrors.Wrapf(err, "upsert review")
	}
	return nil
}

func (s *ReviewStore) GetByID(ctx context.Context, id string) (*content.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, author_name, rating, body, approved, created_at
		FROM reviews WHERE id = ?`, id)

	var (
		review    content.Review
		approved  int64
		createdAt int64
	)
	err := row.Scan(&review.ID, &review.AuthorID, &review.AuthorName, &review.Rating,
		&review.Body, &approved, &createdAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan review")
	}
	review.Approved = approved != 0
	review.CreatedAt = fromMillis(createdAt)
	return &review, nil
}

func (s *ReviewStore) List(ctx context.Context, opts content.ReviewListOptions) ([]*content.Review, error) {
	query := `SELECT id, author_id, author_name, rating, body, approved, created_at FROM reviews`
	args := []any{}
	if opts.ApprovedOnly {
		query += ` WHERE approved = 1`
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrapf(err, "list reviews")
	}
	defer rows.Close()

	var reviews []*content.Review
	for rows.Next() {
		var (
			review    content.Review
			approved  int64
			createdAt int64
		)
		if err := rows.Scan(&review.ID, &review.AuthorID, &review.AuthorName, &review.Rating,
			&review.Body, &approved, &createdAt); err != nil {
			return nil, apperrors.Wrapf(err, "scan review row")
		}
		review.Approved = approved != 0
		review.CreatedAt = fromMillis(createdAt)
		reviews = append(reviews, &review)
	}
	return reviews, rows.Err()
}

func (s *ReviewStore) SetApproved(ctx context.Context, id string, approved bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE reviews SET approved = ? WHERE id = ?`, boolToInt(approved), id)
	if err != nil {
		return apperrors.Wrapf(err, "set approved flag")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ReviewStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return apperrors.Wrapf(err, "delete review")
	}
	return nil
}

func (s *ReviewStore) Count(ctx context.Context, approvedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM reviews`
	if approvedOnly {
		query += ` WHERE approved = 1`
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.Wrapf(err, "count reviews")
	}
	return count, nil
}
