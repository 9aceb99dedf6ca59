package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case got, ok := <-ch:
		require.True(t, ok, "channel closed")
		return got
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("i1")
	all := b.Subscribe(AllTopic)
	other := b.Subscribe("i2")

	evt := Event{Type: "test.event", Data: map[string]any{"x": 1}}
	b.Publish("i1", evt)

	assert.Equal(t, evt, recv(t, ch))
	assert.Equal(t, evt, recv(t, all))
	select {
	case got := <-other:
		t.Fatalf("unexpected event on other topic: %+v", got)
	default:
	}

	b.Unsubscribe("i1", ch)
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
	// a second unsubscribe is a no-op
	b.Unsubscribe("i1", ch)
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("i1")
	for i := 0; i < 100; i++ {
		b.Publish("i1", Event{Type: "tick"})
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("i1")
	require.NoError(t, b.Close())
	_, ok := <-ch
	assert.False(t, ok)
}
