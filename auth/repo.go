package auth

import (
	"context"
	"time"
)

// UserRepo defines the interface for user identity storage.
type UserRepo interface {
	// Upsert creates or updates a user
	Upsert(ctx context.Context, user *User) error

	// Delete removes a user by ID
	Delete(ctx context.Context, id string) error

	// GetByEmail retrieves a user by email address
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// List returns users ordered by creation time
	List(ctx context.Context, offset, limit int) ([]*User, error)

	// SetLastLogin records the time of the user's latest sign-in
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionRepo defines the interface for session storage. Sessions are keyed
// by their refresh token; rotation deletes the old row and inserts the new.
type SessionRepo interface {
	// Upsert creates or updates a session
	Upsert(ctx context.Context, session *Session) error

	// GetByRefreshToken retrieves a session by its refresh token
	GetByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)

	// DeleteByRefreshToken removes a single session
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error

	// DeleteByUserID removes every session for a user (global sign-out)
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired removes sessions whose refresh expiry is before cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time) error
}
