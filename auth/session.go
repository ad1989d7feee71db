package auth

import "time"

// StorageKey is the fixed key under which the session's refresh token is
// persisted on the client side (cookie name). Changing it invalidates every
// outstanding session.
const StorageKey = "fs-auth-token"

// Session is the backend-issued proof of authentication: an access/refresh
// token pair plus expiry. The access token is a signed JWT; the refresh token
// is an opaque value that keys the server-side session row.
type Session struct {
	UserID           string    // User the session belongs to
	AccessToken      string    // Short-lived signed JWT
	RefreshToken     string    // Opaque token, rotated on every refresh
	ExpiresAt        time.Time // Access token expiry
	RefreshExpiresAt time.Time // Refresh token expiry; the session dies here
	CreatedAt        time.Time
}

// Expired reports whether the access token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// RefreshExpired reports whether the session can no longer be refreshed.
func (s *Session) RefreshExpired(now time.Time) bool {
	return !s.RefreshExpiresAt.After(now)
}
