package auth

import "sync"

// EventKind identifies the auth state change an event describes.
type EventKind string

const (
	EventSignedIn         EventKind = "SIGNED_IN"
	EventSignedOut        EventKind = "SIGNED_OUT"
	EventTokenRefreshed   EventKind = "TOKEN_REFRESHED"
	EventUserUpdated      EventKind = "USER_UPDATED"
	EventPasswordRecovery EventKind = "PASSWORD_RECOVERY"
)

// Event is published on every auth state change. User is set for SIGNED_IN
// so subscribers can adopt it without another round trip; it may be nil for
// other kinds.
type Event struct {
	Kind    EventKind
	User    *User
	Session *Session
}

// subscriberBuffer bounds each subscriber channel. A subscriber that falls
// this far behind loses events rather than blocking publishers.
const subscriberBuffer = 8

// Broadcaster fans auth events out to subscribers. Publishing never blocks.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its channel together with
// an unsubscribe function. Unsubscribing closes the channel; it is safe to
// call more than once.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, unsubscribe
}

// Publish delivers the event to every subscriber without blocking. Full
// subscriber buffers drop the event.
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
