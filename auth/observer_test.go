package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/auth"
)

// stubSource is a controllable SessionSource for observer tests.
type stubSource struct {
	mu      sync.Mutex
	session *auth.Session
	user    *auth.User
	err     error
	block   chan struct{} // when set, CurrentSession waits on it
}

func (s *stubSource) set(session *auth.Session, user *auth.User, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.user = user
	s.err = err
}

func (s *stubSource) CurrentSession(ctx context.Context) (*auth.Session, error) {
	s.mu.Lock()
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.err
}

func (s *stubSource) UserForSession(_ context.Context, _ *auth.Session) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.err
}

func waitForState(t *testing.T, o *auth.Observer, check func(user *auth.User, loading bool) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check(o.State()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("observer never reached the expected state")
}

func TestObserver_InitialFetchResolvesUser(t *testing.T) {
	user := &auth.User{ID: "user-1", Email: testUserEmail}
	source := &stubSource{session: &auth.Session{UserID: user.ID}, user: user}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events)
	observer.Start(context.Background())
	defer observer.Stop()

	waitForState(t, observer, func(u *auth.User, loading bool) bool {
		return !loading && u != nil && u.ID == user.ID
	})
}

func TestObserver_InitialFetchNoSession(t *testing.T) {
	source := &stubSource{}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events)
	observer.Start(context.Background())
	defer observer.Stop()

	waitForState(t, observer, func(u *auth.User, loading bool) bool {
		return !loading && u == nil
	})
}

func TestObserver_TimeoutSettlesUnauthenticated(t *testing.T) {
	source := &stubSource{block: make(chan struct{})}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events, auth.WithFetchTimeout(20*time.Millisecond))
	observer.Start(context.Background())
	defer observer.Stop()

	waitForState(t, observer, func(u *auth.User, loading bool) bool {
		return !loading && u == nil
	})

	// Unblock the stuck fetch; the late result must be discarded.
	source.set(&auth.Session{UserID: "user-1"}, &auth.User{ID: "user-1"}, nil)
	close(source.block)
	time.Sleep(50 * time.Millisecond)

	u, loading := observer.State()
	require.False(t, loading)
	require.Nil(t, u)
}

func TestObserver_SignedInEventAdoptsUser(t *testing.T) {
	source := &stubSource{}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events)
	observer.Start(context.Background())
	defer observer.Stop()

	waitForState(t, observer, func(_ *auth.User, loading bool) bool { return !loading })

	user := &auth.User{ID: "user-2", Email: testUserEmail}
	events.Publish(auth.Event{Kind: auth.EventSignedIn, User: user})

	waitForState(t, observer, func(u *auth.User, _ bool) bool {
		return u != nil && u.ID == user.ID
	})
}

func TestObserver_SignedOutEventClearsUser(t *testing.T) {
	user := &auth.User{ID: "user-3"}
	source := &stubSource{session: &auth.Session{UserID: user.ID}, user: user}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events)
	observer.Start(context.Background())
	defer observer.Stop()

	waitForState(t, observer, func(u *auth.User, loading bool) bool {
		return !loading && u != nil
	})

	events.Publish(auth.Event{Kind: auth.EventSignedOut})

	waitForState(t, observer, func(u *auth.User, _ bool) bool { return u == nil })
}

func TestObserver_TokenRefreshedEventRefetches(t *testing.T) {
	source := &stubSource{}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events)
	observer.Start(context.Background())
	defer observer.Stop()

	waitForState(t, observer, func(_ *auth.User, loading bool) bool { return !loading })

	// A refresh event with no attached user forces a re-fetch from the source.
	user := &auth.User{ID: "user-4"}
	source.set(&auth.Session{UserID: user.ID}, user, nil)
	events.Publish(auth.Event{Kind: auth.EventTokenRefreshed})

	waitForState(t, observer, func(u *auth.User, _ bool) bool {
		return u != nil && u.ID == user.ID
	})
}

func TestObserver_EventBeatsInitialFetch(t *testing.T) {
	source := &stubSource{block: make(chan struct{})}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events, auth.WithFetchTimeout(200*time.Millisecond))
	observer.Start(context.Background())
	defer observer.Stop()

	user := &auth.User{ID: "user-5"}
	events.Publish(auth.Event{Kind: auth.EventSignedIn, User: user})

	waitForState(t, observer, func(u *auth.User, loading bool) bool {
		return !loading && u != nil && u.ID == user.ID
	})

	// The fetch completes late with "no session"; the event's answer wins.
	close(source.block)
	time.Sleep(50 * time.Millisecond)

	u, _ := observer.State()
	require.NotNil(t, u)
	require.Equal(t, user.ID, u.ID)
}

func TestObserver_StopDiscardsLateWrites(t *testing.T) {
	source := &stubSource{block: make(chan struct{})}
	events := auth.NewBroadcaster()

	observer := auth.NewObserver(source, events, auth.WithFetchTimeout(5*time.Second))
	observer.Start(context.Background())

	observer.Stop()

	source.set(&auth.Session{UserID: "user-6"}, &auth.User{ID: "user-6"}, nil)
	close(source.block)
	time.Sleep(50 * time.Millisecond)

	u, _ := observer.State()
	require.Nil(t, u)
}
