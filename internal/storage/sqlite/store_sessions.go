package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/harubang/fengshui-site/auth"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// SessionStore implements auth.SessionRepo.
type SessionStore struct {
	db *sql.DB
}

var _ auth.SessionRepo = (*SessionStore)(nil)

func (s *SessionStore) Upsert(ctx context.Context, session *auth.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (refresh_token, user_id, access_token, expires_at, refresh_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(refresh_token) DO UPDATE SET
			access_token = excluded.access_token,
			expires_at = excluded.expires_at,
			refresh_expires_at = excluded.refresh_expires_at`,
		session.RefreshToken, session.UserID, session.AccessToken,
		toMillis(session.ExpiresAt), toMillis(session.RefreshExpiresAt), toMillis(session.CreatedAt))
	if err != nil {
		return apperrors.Wrapf(err, "upsert session")
	}
	return nil
}

func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*auth.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT refresh_token, user_id, access_token, expires_at, refresh_expires_at, created_at
		FROM sessions WHERE refresh_token = ?`, refreshToken)

	var (
		session          auth.Session
		expiresAt        int64
		refreshExpiresAt int64
		createdAt        int64
	)
	err := row.Scan(&session.RefreshToken, &session.UserID, &session.AccessToken, &expiresAt, &refreshExpiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "scan session")
	}

	session.ExpiresAt = fromMillis(expiresAt)
	session.RefreshExpiresAt = fromMillis(refreshExpiresAt)
	session.CreatedAt = fromMillis(createdAt)
	return &session, nil
}

func (s *SessionStore) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = ?`, refreshToken); err != nil {
		return apperrors.Wrapf(err, "delete session")
	}
	return nil
}

func (s *SessionStore) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return apperrors.Wrapf(err, "delete user sessions")
	}
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, cutoff time.Time) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_expires_at < ?`, toMillis(cutoff)); err != nil {
		return apperrors.Wrapf(err, "delete expired sessions")
	}
	return nil
}
