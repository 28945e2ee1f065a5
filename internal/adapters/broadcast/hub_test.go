package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralphtown/ralphtown/internal/domain"
)

func TestBroadcastReachesSessionSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	first, cancelFirst := hub.Subscribe("session-a")
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe("session-a")
	defer cancelSecond()
	other, cancelOther := hub.Subscribe("session-b")
	defer cancelOther()

	msg := domain.NewStatusMessage("session-a", domain.StatusRunning)
	hub.Broadcast("session-a", msg)

	select {
	case got := <-first:
		assert.Equal(t, msg, got)
	case <-time.After(time.Second):
		t.Fatal("first subscriber did not receive message")
	}
	select {
	case got := <-second:
		assert.Equal(t, msg, got)
	case <-time.After(time.Second):
		t.Fatal("second subscriber did not receive message")
	}

	select {
	case got := <-other:
		t.Fatalf("subscriber of another session received %+v", got)
	default:
	}
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	// Must not panic or block
	hub.Broadcast("nobody-home", domain.NewOutputMessage("nobody-home", domain.StreamStdout, "hello"))
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	events, cancel := hub.Subscribe("session-a")
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer+10; i++ {
			hub.Broadcast("session-a", domain.NewOutputMessage("session-a", domain.StreamStdout, "line"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a full subscriber channel")
	}

	assert.Len(t, events, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	events, cancel := hub.Subscribe("session-a")
	require.Equal(t, 1, hub.SubscriberCount("session-a"))

	cancel()
	assert.Equal(t, 0, hub.SubscriberCount("session-a"))

	_, open := <-events
	assert.False(t, open)

	// Second call is a no-op
	cancel()
}

func TestCloseShutsDownSubscribers(t *testing.T) {
	hub := NewHub()

	events, _ := hub.Subscribe("session-a")
	hub.Close()

	_, open := <-events
	assert.False(t, open)

	// Subscribing after close yields a closed channel
	late, cancel := hub.Subscribe("session-a")
	defer cancel()
	_, open = <-late
	assert.False(t, open)

	// Broadcasting after close is a no-op
	hub.Broadcast("session-a", domain.NewStatusMessage("session-a", domain.StatusCompleted))
}
