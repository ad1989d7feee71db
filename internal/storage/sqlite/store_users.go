package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harubang/fengshui-site/auth"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// UserStore implements auth.UserRepo.
type UserStore struct {
	db *sql.DB
}

var _ auth.UserRepo = (*UserStore)(nil)

func (s *UserStore) Upsert(ctx context.Context, user *auth.User) error {
	metadata, err := json.Marshal(user.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, metadata, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			password_hash = excluded.password_hash,
			metadata = excluded.metadata,
			last_login = excluded.last_login`,
		user.ID, user.Email, user.PasswordHash, string(metadata),
		toMillis(user.CreatedAt), toMillis(user.LastLogin))
	if err != nil {
		return apperrors.Wrapf(err, "upsert user")
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return apperrors.Wrapf(err, "delete user")
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, metadata, created_at, last_login FROM users WHERE email = ?`, email)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, metadata, created_at, last_login FROM users WHERE id = ?`, id)
}

func (s *UserStore) getUser(ctx context.Context, query string, arg any) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, query, arg)

	var (
		user      auth.User
		metadata  string
		createdAt int64
		lastLogin int64
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &metadata, &createdAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan user")
	}

	if err := json.Unmarshal([]byte(metadata), &user.Metadata); err != nil {
		user.Metadata = nil
	}
	user.CreatedAt = fromMillis(createdAt)
	user.LastLogin = fromMillis(lastLogin)
	return &user, nil
}

func (s *UserStore) List(ctx context.Context, offset, limit int) ([]*auth.User, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash, metadata, created_at, last_login
		FROM users ORDER BY created_at ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, apperrors.Wrapf(err, "list users")
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		var (
			user      auth.User
			metadata  string
			createdAt int64
			lastLogin int64
		)
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &metadata, &createdAt, &lastLogin); err != nil {
			return nil, apperrors.Wrapf(err, "scan user row")
		}
		if err := json.Unmarshal([]byte(metadata), &user.Metadata); err != nil {
			user.Metadata = nil
		}
		user.CreatedAt = fromMillis(createdAt)
		user.LastLogin = fromMillis(lastLogin)
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (s *UserStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, toMillis(at), id); err != nil {
		return apperrors.Wrapf(err, "set last login")
	}
	return nil
}
