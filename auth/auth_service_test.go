package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/auth/repofakes"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

const (
	testIssuer       = "https://fengshui.test"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Password123!"
	testUserName     = "John Doe"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo    *repofakes.FakeUserRepo
	sessionRepo *repofakes.FakeSessionRepo
	events      *auth.Broadcaster
	service     *auth.Service
}

// fakeProvisioner records profile provisioning calls
type fakeProvisioner struct {
	calls []string
}

func (p *fakeProvisioner) EnsureProfile(_ context.Context, userID, _, _ string) error {
	p.calls = append(p.calls, userID)
	return nil
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	ur := repofakes.NewFakeUserRepo()
	sr := repofakes.NewFakeSessionRepo()
	events := auth.NewBroadcaster()

	tokens, err := auth.NewTokenCreator([]byte("test-signing-secret"), testIssuer, 15*time.Minute)
	require.NoError(t, err)

	service, err := auth.NewService(auth.Repos{Users: ur, Sessions: sr}, tokens, events, options...)
	require.NoError(t, err)

	return &testFixture{
		userRepo:    ur,
		sessionRepo: sr,
		events:      events,
		service:     service,
	}
}

func (f *testFixture) signUpTestUser(t *testing.T) *auth.User {
	t.Helper()
	user, err := f.service.SignUp(context.Background(), testUserEmail, testUserPassword, testUserName)
	require.NoError(t, err)
	return user
}

func TestNewService_MissingDependencies(t *testing.T) {
	tokens, err := auth.NewTokenCreator([]byte("secret"), testIssuer, time.Minute)
	require.NoError(t, err)
	events := auth.NewBroadcaster()

	_, err = auth.NewService(auth.Repos{Sessions: repofakes.NewFakeSessionRepo()}, tokens, events)
	require.Error(t, err)

	_, err = auth.NewService(auth.Repos{Users: repofakes.NewFakeUserRepo()}, tokens, events)
	require.Error(t, err)

	repos := auth.Repos{Users: repofakes.NewFakeUserRepo(), Sessions: repofakes.NewFakeSessionRepo()}
	_, err = auth.NewService(repos, nil, events)
	require.Error(t, err)

	_, err = auth.NewService(repos, tokens, nil)
	require.Error(t, err)
}

func TestSignUp_CreatesUserAndProfile(t *testing.T) {
	provisioner := &fakeProvisioner{}
	f := setupTestFixture(t, auth.WithProfileProvisioner(provisioner))

	user := f.signUpTestUser(t)
	require.Equal(t, testUserEmail, user.Email)
	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, user.PasswordHash)
	require.Equal(t, []string{user.ID}, provisioner.calls)

	stored, err := f.userRepo.GetByEmail(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
}

func TestSignUp_NormalizesEmail(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.service.SignUp(context.Background(), "  John.Doe@Example.COM ", testUserPassword, testUserName)
	require.NoError(t, err)
	require.Equal(t, testUserEmail, user.Email)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.signUpTestUser(t)

	_, err := f.service.SignUp(context.Background(), testUserEmail, testUserPassword, testUserName)
	require.ErrorIs(t, err, apperrors.ErrUserExists)
}

func TestSignUp_WeakPassword(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.SignUp(context.Background(), testUserEmail, "short", testUserName)
	require.Error(t, err)
}

func TestSignIn_Success(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signUpTestUser(t)

	session, signedIn, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.Equal(t, user.ID, signedIn.ID)
	require.Equal(t, user.ID, session.UserID)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.True(t, session.ExpiresAt.After(time.Now()))
	require.Equal(t, 1, f.sessionRepo.Len())
}

func TestSignIn_WrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.signUpTestUser(t)

	_, _, err := f.service.SignIn(context.Background(), testUserEmail, "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSignIn_UnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.service.SignIn(context.Background(), "nobody@example.com", testUserPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSignIn_PublishesSignedInEvent(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signUpTestUser(t)

	events, unsubscribe := f.events.Subscribe()
	defer unsubscribe()

	_, _, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	select {
	case event := <-events:
		require.Equal(t, auth.EventSignedIn, event.Kind)
		require.Equal(t, user.ID, event.User.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a SIGNED_IN event")
	}
}

func TestSignInOAuth_ProvisionsOnFirstSight(t *testing.T) {
	provisioner := &fakeProvisioner{}
	f := setupTestFixture(t, auth.WithProfileProvisioner(provisioner))

	session, user, err := f.service.SignInOAuth(context.Background(), testUserEmail, testUserName, "google-sub-1")
	require.NoError(t, err)
	require.Equal(t, testUserEmail, user.Email)
	require.Equal(t, user.ID, session.UserID)
	require.Len(t, provisioner.calls, 1)

	// Second sign-in finds the existing account instead of provisioning again
	_, again, err := f.service.SignInOAuth(context.Background(), testUserEmail, testUserName, "google-sub-1")
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
	require.Len(t, provisioner.calls, 1)
}

func TestSignOut_InvalidatesSession(t *testing.T) {
	f := setupTestFixture(t)
	f.signUpTestUser(t)

	session, _, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(context.Background(), session.RefreshToken))

	found, err := f.service.SessionByRefreshToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestSignOut_UnknownTokenIsNotAnError(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.service.SignOut(context.Background(), "no-such-token"))
}

func TestRefreshSession_RotatesPair(t *testing.T) {
	f := setupTestFixture(t)
	f.signUpTestUser(t)

	session, _, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	rotated, user, err := f.service.RefreshSession(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, session.UserID, user.ID)
	require.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Old token is invalidated
	old, err := f.service.SessionByRefreshToken(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	require.Nil(t, old)

	// New token resolves
	current, err := f.service.SessionByRefreshToken(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, current)
}

func TestRefreshSession_UnknownToken(t *testing.T) {
	f := setupTestFixture(t)
	_, _, err := f.service.RefreshSession(context.Background(), "no-such-token")
	require.ErrorIs(t, err, apperrors.ErrSession)
}

func TestRefreshSession_ExpiredRefreshToken(t *testing.T) {
	now := time.Now()
	f := setupTestFixture(t, auth.WithNowTime(func() time.Time { return now }))
	f.signUpTestUser(t)

	session, _, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	// Jump past the refresh expiry
	now = now.Add(8 * 24 * time.Hour)

	_, _, err = f.service.RefreshSession(context.Background(), session.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, 0, f.sessionRepo.Len())
}

func TestSessionByRefreshToken_EmptyToken(t *testing.T) {
	f := setupTestFixture(t)
	session, err := f.service.SessionByRefreshToken(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestUserForSession_ResolvesUser(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signUpTestUser(t)

	session, _, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	resolved, err := f.service.UserForSession(context.Background(), session)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)

	_, err = f.service.UserForSession(context.Background(), nil)
	require.ErrorIs(t, err, apperrors.ErrSession)
}

func TestUserFromAccessToken_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signUpTestUser(t)

	session, _, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	resolved, err := f.service.UserFromAccessToken(context.Background(), session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)

	_, err = f.service.UserFromAccessToken(context.Background(), "garbage")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestCleanupExpiredSessions(t *testing.T) {
	now := time.Now()
	f := setupTestFixture(t, auth.WithNowTime(func() time.Time { return now }))
	f.signUpTestUser(t)

	_, _, err := f.service.SignIn(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.Equal(t, 1, f.sessionRepo.Len())

	now = now.Add(8 * 24 * time.Hour)
	require.NoError(t, f.service.CleanupExpiredSessions(context.Background()))
	require.Equal(t, 0, f.sessionRepo.Len())
}
