package api

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a reachable server, e.g. REDIS_URL=redis://localhost:6379/0.
func TestRedisBroker(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	b, err := NewRedisBroker(context.Background(), url, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	topic := uuid.NewString()
	ch := b.Subscribe(topic)
	all := b.Subscribe(AllTopic)

	evt := Event{Type: EventSolutionCreated, Data: map[string]any{"instanceId": topic}}
	b.Publish(topic, evt)

	for _, c := range []chan Event{ch, all} {
		deadline := time.After(2 * time.Second)
	wait:
		for {
			select {
			case got := <-c:
				// the all-topic channel may carry events from other publishers
				if got.Data["instanceId"] == topic {
					assert.Equal(t, evt, got)
					break wait
				}
			case <-deadline:
				t.Fatal("timeout waiting for redis event")
			}
		}
	}

	b.Unsubscribe(topic, ch)
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
}

func TestNewRedisBroker_BadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), "not-a-url", zerolog.Nop())
	require.Error(t, err)
}

func TestRedisBroker_SubscribeFailureClosesChannel(t *testing.T) {
	b := &RedisBroker{
		rdb:  redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1}),
		log:  zerolog.Nop(),
		subs: map[chan Event]*redis.PubSub{},
	}
	defer b.Close()

	ch := b.Subscribe("i1")
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel left open after failed subscribe")
	}
	assert.Empty(t, b.subs)
	// unsubscribing an unregistered channel is a no-op
	b.Unsubscribe("i1", ch)
}
