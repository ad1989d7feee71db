package backend

import (
	"context"
	"io"
	"time"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/content"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
	"github.com/harubang/fengshui-site/profiles"
)

// Client is the handle through which all backend auth and data operations
// are issued. One live handle exists per process, owned by the Factory;
// request-scoped views are derived from it via WithCookies.
type Client struct {
	Auth      *auth.Service
	Events    *auth.Broadcaster
	Profiles  profiles.Repo
	Posts     content.PostRepo
	Notices   content.NoticeRepo
	Questions content.QuestionRepo
	Reviews   content.ReviewRepo

	closer io.Closer
}

// Close releases the client's underlying storage.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// CookieAdapter abstracts where a client's session token lives: HTTP request
// and response cookies on the server, an in-memory slot for a long-lived UI
// context. All values are stored under the fixed auth.StorageKey.
type CookieAdapter interface {
	// Get returns the stored value for name
	Get(name string) (string, bool)

	// Set persists a value; maxAge bounds its lifetime
	Set(name, value string, maxAge time.Duration)

	// Clear removes the value
	Clear(name string)
}

// WithCookies derives a request-scoped view of the client whose session
// source is the given cookie storage. Session refreshes performed through
// the view write the rotated token back through the adapter.
func (c *Client) WithCookies(cookies CookieAdapter) *RequestClient {
	return &RequestClient{client: c, cookies: cookies}
}

// RequestClient is a client view bound to one execution context (an HTTP
// request, or a long-lived UI session). It implements the session source
// contracts consumed by the auth observer and the admin gate.
type RequestClient struct {
	client  *Client
	cookies CookieAdapter
}

var _ auth.SessionSource = (*RequestClient)(nil)
var _ profiles.SessionSource = (*RequestClient)(nil)

// CurrentSession returns the session for the stored token, refreshing the
// pair when the access token has expired. No stored token means no session:
// (nil, nil), not an error.
func (rc *RequestClient) CurrentSession(ctx context.Context) (*auth.Session, error) {
	token, ok := rc.cookies.Get(auth.StorageKey)
	if !ok || token == "" {
		return nil, nil
	}

	session, err := rc.client.Auth.SessionByRefreshToken(ctx, token)
	if err != nil {
		return nil, apperrors.Wrapf(err, "session lookup")
	}
	if session == nil {
		rc.cookies.Clear(auth.StorageKey)
		return nil, nil
	}

	if session.Expired(time.Now()) {
		refreshed, _, err := rc.client.Auth.RefreshSession(ctx, token)
		if err != nil {
			rc.cookies.Clear(auth.StorageKey)
			return nil, apperrors.Wrapf(apperrors.ErrSession, "refresh: %s", err)
		}
		rc.Persist(refreshed)
		return refreshed, nil
	}
	return session, nil
}

// UserForSession resolves the user a session belongs to.
func (rc *RequestClient) UserForSession(ctx context.Context, session *auth.Session) (*auth.User, error) {
	return rc.client.Auth.UserForSession(ctx, session)
}

// SignIn authenticates a credential and stores the issued session token.
func (rc *RequestClient) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	session, user, err := rc.client.Auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	rc.Persist(session)
	return user, nil
}

// SignInOAuth stores the session issued for an external identity.
func (rc *RequestClient) SignInOAuth(ctx context.Context, email, fullName, subject string) (*auth.User, error) {
	session, user, err := rc.client.Auth.SignInOAuth(ctx, email, fullName, subject)
	if err != nil {
		return nil, err
	}
	rc.Persist(session)
	return user, nil
}

// SignOut ends the stored session and clears the token.
func (rc *RequestClient) SignOut(ctx context.Context) error {
	token, _ := rc.cookies.Get(auth.StorageKey)
	rc.cookies.Clear(auth.StorageKey)
	return rc.client.Auth.SignOut(ctx, token)
}

// Gate returns an admin gate evaluating against this view's session.
func (rc *RequestClient) Gate() *profiles.Gate {
	return profiles.NewGate(rc, rc.client.Profiles)
}

// Persist writes a session's refresh token through the cookie adapter.
func (rc *RequestClient) Persist(session *auth.Session) {
	maxAge := time.Until(session.RefreshExpiresAt)
	rc.cookies.Set(auth.StorageKey, session.RefreshToken, maxAge)
}
