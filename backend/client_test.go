package backend_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/auth/repofakes"
	"github.com/harubang/fengshui-site/backend"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

const (
	clientTestEmail    = "jane.doe@example.com"
	clientTestPassword = "Password123!"
)

// clientFixture wires a backend client over fake repositories.
type clientFixture struct {
	sessionRepo *repofakes.FakeSessionRepo
	client      *backend.Client
	cookies     *backend.MemoryCookies
	rc          *backend.RequestClient
}

func setupClientFixture(t *testing.T, accessExpiry time.Duration) *clientFixture {
	t.Helper()

	ur := repofakes.NewFakeUserRepo()
	sr := repofakes.NewFakeSessionRepo()
	events := auth.NewBroadcaster()

	tokens, err := auth.NewTokenCreator([]byte("test-signing-secret"), "https://fengshui.test", accessExpiry)
	require.NoError(t, err)

	service, err := auth.NewService(auth.Repos{Users: ur, Sessions: sr}, tokens, events)
	require.NoError(t, err)

	client := &backend.Client{Auth: service, Events: events}
	cookies := backend.NewMemoryCookies()

	return &clientFixture{
		sessionRepo: sr,
		client:      client,
		cookies:     cookies,
		rc:          client.WithCookies(cookies),
	}
}

func (f *clientFixture) signIn(t *testing.T) *auth.User {
	t.Helper()
	_, err := f.client.Auth.SignUp(context.Background(), clientTestEmail, clientTestPassword, "Jane Doe")
	require.NoError(t, err)
	user, err := f.rc.SignIn(context.Background(), clientTestEmail, clientTestPassword)
	require.NoError(t, err)
	return user
}

func TestCurrentSession_NoStoredToken(t *testing.T) {
	f := setupClientFixture(t, 15*time.Minute)

	session, err := f.rc.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestCurrentSession_ValidToken(t *testing.T) {
	f := setupClientFixture(t, 15*time.Minute)
	user := f.signIn(t)

	session, err := f.rc.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, user.ID, session.UserID)
}

func TestCurrentSession_StaleTokenCleared(t *testing.T) {
	f := setupClientFixture(t, 15*time.Minute)
	f.cookies.Set(auth.StorageKey, "token-that-no-longer-exists", time.Hour)

	session, err := f.rc.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)

	_, stored := f.cookies.Get(auth.StorageKey)
	require.False(t, stored)
}

func TestCurrentSession_ExpiredAccessTokenRefreshes(t *testing.T) {
	// A negative access expiry makes every issued session immediately stale,
	// forcing the refresh path.
	f := setupClientFixture(t, -time.Minute)
	user := f.signIn(t)

	before, ok := f.cookies.Get(auth.StorageKey)
	require.True(t, ok)

	session, err := f.rc.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, user.ID, session.UserID)

	// The rotated refresh token was written back through the adapter.
	after, ok := f.cookies.Get(auth.StorageKey)
	require.True(t, ok)
	require.NotEqual(t, before, after)
	require.Equal(t, session.RefreshToken, after)
}

func TestCurrentSession_RefreshFailureClearsToken(t *testing.T) {
	f := setupClientFixture(t, -time.Minute)
	f.signIn(t)

	token, ok := f.cookies.Get(auth.StorageKey)
	require.True(t, ok)

	// Kill the session server-side while the cookie still holds its token,
	// then age it so the lookup succeeds but the refresh cannot.
	session, err := f.client.Auth.SessionByRefreshToken(context.Background(), token)
	require.NoError(t, err)
	session.RefreshExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, f.sessionRepo.Upsert(context.Background(), session))

	_, err = f.rc.CurrentSession(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSession)

	_, stored := f.cookies.Get(auth.StorageKey)
	require.False(t, stored)
}

func TestSignOut_ClearsStoredToken(t *testing.T) {
	f := setupClientFixture(t, 15*time.Minute)
	f.signIn(t)

	require.NoError(t, f.rc.SignOut(context.Background()))

	_, stored := f.cookies.Get(auth.StorageKey)
	require.False(t, stored)

	session, err := f.rc.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestClientClose_NilSafe(t *testing.T) {
	var client *backend.Client
	require.NoError(t, client.Close())
	require.NoError(t, (&backend.Client{}).Close())
}
