package sqlite

import (
	"context"
	"database/sql"

	apperrors "github.com/harubang/fengshui-site/internal/errors"
	"github.com/harubang/fengshui-site/profiles"
)

// ProfileStore implements profiles.Repo.
type ProfileStore struct {
	db *sql.DB
}

var _ profiles.Repo = (*ProfileStore)(nil)

func (s *ProfileStore) Upsert(ctx context.Context, profile *profiles.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			full_name = excluded.full_name,
			is_admin = excluded.is_admin,
			updated_at = excluded.updated_at`,
		profile.ID, profile.Email, profile.FullName, boolToInt(profile.IsAdmin),
		toMillis(profile.CreatedAt), toMillis(profile.UpdatedAt))
	if err != nil {
		return apperrors.Wrapf(err, "upsert profile")
	}
	return nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*profiles.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, is_admin, created_at, updated_at
		FROM profiles WHERE id = ?`, id)

	var (
		profile   profiles.Profile
		isAdmin   int64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&profile.ID, &profile.Email, &profile.FullName, &isAdmin, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan profile")
	}

	profile.IsAdmin = isAdmin != 0
	profile.CreatedAt = fromMillis(createdAt)
	profile.UpdatedAt = fromMillis(updatedAt)
	return &profile, nil
}

func (s *ProfileStore) List(ctx context.Context, offset, limit int) ([]*profiles.Profile, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, full_name, is_admin, created_at, updated_at
		FROM profiles ORDER BY created_at ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, apperrors.Wrapf(err, "list profiles")
	}
	defer rows.Close()

	var result []*profiles.Profile
	for rows.Next() {
		var (
			profile   profiles.Profile
			isAdmin   int64
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&profile.ID, &profile.Email, &profile.FullName, &isAdmin, &createdAt, &updatedAt); err != nil {
			return nil, apperrors.Wrapf(err, "scan profile row")
		}
		profile.IsAdmin = isAdmin != 0
		profile.CreatedAt = fromMillis(createdAt)
		profile.UpdatedAt = fromMillis(updatedAt)
		result = append(result, &profile)
	}
	return result, rows.Err()
}

func (s *ProfileStore) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE profiles SET is_admin = ? WHERE id = ?`, boolToInt(isAdmin), id)
	if err != nil {
		return apperrors.Wrapf(err, "set admin flag")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ProfileStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, apperrors.Wrapf(err, "count profiles")
	}
	return count, nil
}
