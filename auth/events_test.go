package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/auth"
)

func TestBroadcaster_PublishReachesAllSubscribers(t *testing.T) {
	b := auth.NewBroadcaster()

	first, stopFirst := b.Subscribe()
	defer stopFirst()
	second, stopSecond := b.Subscribe()
	defer stopSecond()

	b.Publish(auth.Event{Kind: auth.EventSignedOut})

	for _, ch := range []<-chan auth.Event{first, second} {
		select {
		case event := <-ch:
			require.Equal(t, auth.EventSignedOut, event.Kind)
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the event")
		}
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := auth.NewBroadcaster()

	ch, unsubscribe := b.Subscribe()
	unsubscribe()

	_, open := <-ch
	require.False(t, open)

	// Safe to call again, and publishing after removal must not panic.
	unsubscribe()
	b.Publish(auth.Event{Kind: auth.EventSignedIn})
}

func TestBroadcaster_PublishNeverBlocks(t *testing.T) {
	b := auth.NewBroadcaster()

	_, unsubscribe := b.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Far more events than the subscriber buffer holds; the surplus is
		// dropped instead of blocking the publisher.
		for i := 0; i < 100; i++ {
			b.Publish(auth.Event{Kind: auth.EventTokenRefreshed})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
