package profiles_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/profiles"
	"github.com/harubang/fengshui-site/profiles/repofakes"
)

const testAdminID = "user-admin"

// sessionStub answers CurrentSession with a fixed result.
type sessionStub struct {
	session *auth.Session
	err     error
}

func (s *sessionStub) CurrentSession(context.Context) (*auth.Session, error) {
	return s.session, s.err
}

func adminGateFixture(t *testing.T, isAdmin bool) (*repofakes.FakeProfileRepo, *profiles.Gate) {
	t.Helper()
	repo := repofakes.NewFakeProfileRepo()
	err := repo.Upsert(context.Background(), &profiles.Profile{ID: testAdminID, IsAdmin: isAdmin})
	require.NoError(t, err)
	gate := profiles.NewGate(&sessionStub{session: &auth.Session{UserID: testAdminID}}, repo)
	return repo, gate
}

func TestIsAdmin_AdminProfile(t *testing.T) {
	_, gate := adminGateFixture(t, true)
	require.True(t, gate.IsAdmin(context.Background(), testAdminID))
}

func TestIsAdmin_NonAdminProfile(t *testing.T) {
	_, gate := adminGateFixture(t, false)
	require.False(t, gate.IsAdmin(context.Background(), testAdminID))
}

func TestIsAdmin_NoSession(t *testing.T) {
	repo := repofakes.NewFakeProfileRepo()
	require.NoError(t, repo.Upsert(context.Background(), &profiles.Profile{ID: testAdminID, IsAdmin: true}))

	gate := profiles.NewGate(&sessionStub{}, repo)
	require.False(t, gate.IsAdmin(context.Background(), testAdminID))
}

func TestIsAdmin_SessionError(t *testing.T) {
	repo := repofakes.NewFakeProfileRepo()
	require.NoError(t, repo.Upsert(context.Background(), &profiles.Profile{ID: testAdminID, IsAdmin: true}))

	gate := profiles.NewGate(&sessionStub{err: errors.New("session store down")}, repo)
	require.False(t, gate.IsAdmin(context.Background(), testAdminID))
}

func TestIsAdmin_ProfileQueryError(t *testing.T) {
	repo, gate := adminGateFixture(t, true)
	repo.QueryErr = errors.New("database down")
	require.False(t, gate.IsAdmin(context.Background(), testAdminID))
}

func TestIsAdmin_MissingProfile(t *testing.T) {
	_, gate := adminGateFixture(t, true)
	require.False(t, gate.IsAdmin(context.Background(), "user-without-profile"))
}

func TestIsAdmin_RevocationTakesEffectImmediately(t *testing.T) {
	repo, gate := adminGateFixture(t, true)
	require.True(t, gate.IsAdmin(context.Background(), testAdminID))

	require.NoError(t, repo.SetAdmin(context.Background(), testAdminID, false))
	require.False(t, gate.IsAdmin(context.Background(), testAdminID))
}
