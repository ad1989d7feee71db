package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds the observer's initial session fetch. On timeout
// the observer settles on "not authenticated" instead of hanging; this is an
// availability trade-off, not a correctness guarantee.
const DefaultFetchTimeout = 8 * time.Second

// SessionSource is the view of a client the observer reads auth state
// through. CurrentSession returns (nil, nil) when no session exists.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*Session, error)
	UserForSession(ctx context.Context, session *Session) (*User, error)
}

// Observer mirrors backend auth events into a local state snapshot for the
// UI. It subscribes once on Start; Stop tears down the subscription and any
// in-flight fallback fetch atomically, so no state write can land after
// teardown.
type Observer struct {
	source  SessionSource
	events  *Broadcaster
	timeout time.Duration

	mu      sync.Mutex
	user    *User
	loading bool

	settleOnce sync.Once

	cancel context.CancelFunc
	group  *errgroup.Group
}

// ObserverOption defines a function type to modify the Observer instance.
type ObserverOption func(*Observer)

// WithFetchTimeout overrides the initial fetch bound.
func WithFetchTimeout(d time.Duration) ObserverOption {
	return func(o *Observer) {
		o.timeout = d
	}
}

func NewObserver(source SessionSource, events *Broadcaster, options ...ObserverOption) *Observer {
	o := &Observer{
		source:  source,
		events:  events,
		timeout: DefaultFetchTimeout,
		loading: true,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Start subscribes to the event stream and kicks off the bounded initial
// fetch. Both run under one scope torn down by Stop or parent cancellation.
func (o *Observer) Start(ctx context.Context) {
	scope, cancel := context.WithCancel(ctx)
	group, scope := errgroup.WithContext(scope)
	o.cancel = cancel
	o.group = group

	sub, unsubscribe := o.events.Subscribe()

	group.Go(func() error {
		o.initialFetch(scope)
		return nil
	})

	group.Go(func() error {
		defer unsubscribe()
		for {
			select {
			case <-scope.Done():
				return nil
			case event, ok := <-sub:
				if !ok {
					return nil
				}
				o.handleEvent(scope, event)
			}
		}
	})
}

// Stop cancels the scope and waits for the subscription loop and any
// in-flight fetch to finish. Safe to call once after Start.
func (o *Observer) Stop() {
	if o.cancel == nil {
		return
	}
	o.cancel()
	_ = o.group.Wait()
}

// State returns the current user (nil when unauthenticated) and whether the
// initial load is still in progress.
func (o *Observer) State() (*User, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.user, o.loading
}

// initialFetch resolves the starting auth state within the configured bound.
// Whatever happens first - result, error, timeout - settles loading exactly
// once; a late result is discarded by the settleOnce guard.
func (o *Observer) initialFetch(scope context.Context) {
	ctx, cancel := context.WithTimeout(scope, o.timeout)
	defer cancel()

	result := make(chan *User, 1)
	go func() { result <- o.fetchUser(ctx) }()

	select {
	case <-ctx.Done():
		o.settle(scope, nil)
	case user := <-result:
		o.settle(scope, user)
	}
}

// handleEvent mirrors one backend auth event into local state.
// SIGNED_IN adopts the event-supplied user directly; SIGNED_OUT clears state
// immediately; every other kind falls back to a bounded re-fetch.
func (o *Observer) handleEvent(scope context.Context, event Event) {
	switch event.Kind {
	case EventSignedIn:
		o.setUser(scope, event.User)
	case EventSignedOut:
		o.setUser(scope, nil)
	default:
		ctx, cancel := context.WithTimeout(scope, o.timeout)
		defer cancel()
		o.setUser(scope, o.fetchUser(ctx))
	}
}

// fetchUser re-derives the user via two sequential calls: session, then
// user. Either call failing means unauthenticated.
func (o *Observer) fetchUser(ctx context.Context) *User {
	session, err := o.source.CurrentSession(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Auth observer: session fetch failed")
		return nil
	}
	if session == nil {
		return nil
	}
	user, err := o.source.UserForSession(ctx, session)
	if err != nil {
		log.Debug().Err(err).Msg("Auth observer: user fetch failed")
		return nil
	}
	return user
}

// settle applies the initial-fetch result and leaves the loading state,
// exactly once.
func (o *Observer) settle(scope context.Context, user *User) {
	o.settleOnce.Do(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		// An event may have resolved state before the initial fetch; the
		// fetch result is the stale one then, so keep the event's answer.
		if o.loading && scope.Err() == nil {
			o.user = user
		}
		o.loading = false
	})
}

// setUser writes local user state unless the scope has been torn down.
func (o *Observer) setUser(scope context.Context, user *User) {
	if scope.Err() != nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.user = user
	o.loading = false
}
