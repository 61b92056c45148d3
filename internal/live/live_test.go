package live_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildcache/internal/live"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "updates channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

func TestHub(t *testing.T) {
	hub := live.NewHub()

	id, wake := hub.Register("chat_messages", "chat_message_likes")
	assert.Equal(t, 1, hub.Listeners("chat_messages"))
	assert.Equal(t, 1, hub.Listeners("chat_message_likes"))

	t.Run("PublishCoalesces", func(t *testing.T) {
		hub.Publish("chat_messages")
		hub.Publish("chat_message_likes")
		hub.Publish("groups")

		<-wake
		select {
		case <-wake:
			t.Fatal("expected a single pending wake-up")
		default:
		}
	})

	t.Run("Unregister", func(t *testing.T) {
		hub.Unregister(id)
		assert.Zero(t, hub.Listeners("chat_messages"))
		assert.Zero(t, hub.Listeners("chat_message_likes"))
		hub.Publish("chat_messages")
	})
}

func TestQuerySubscribe(t *testing.T) {
	hub := live.NewHub()
	var version atomic.Int64
	q := live.NewQuery(hub, func(ctx context.Context) (int64, error) {
		return version.Load(), nil
	}, "groups")

	sub := q.Subscribe(context.Background())
	assert.Equal(t, int64(0), receive(t, sub.Updates()))

	version.Store(1)
	hub.Publish("groups")
	assert.Equal(t, int64(1), receive(t, sub.Updates()))

	version.Store(2)
	hub.Publish("members")
	select {
	case v := <-sub.Updates():
		t.Fatalf("unexpected snapshot %d for unrelated table", v)
	case <-time.After(50 * time.Millisecond):
	}

	sub.Close()
	_, ok := <-sub.Updates()
	assert.False(t, ok)
	assert.NoError(t, sub.Err())
	assert.Zero(t, hub.Listeners("groups"))
}

func TestQueryRestartable(t *testing.T) {
	hub := live.NewHub()
	var calls atomic.Int64
	q := live.NewQuery(hub, func(ctx context.Context) (int64, error) {
		return calls.Add(1), nil
	}, "groups")

	assert.Zero(t, calls.Load(), "queries are lazy")

	first := q.Subscribe(context.Background())
	assert.Equal(t, int64(1), receive(t, first.Updates()))
	first.Close()

	second := q.Subscribe(context.Background())
	assert.Equal(t, int64(2), receive(t, second.Updates()))
	second.Close()
}

func TestQuerySkipWhen(t *testing.T) {
	hub := live.NewHub()
	var current atomic.Pointer[string]
	q := live.NewQuery(hub, func(ctx context.Context) (*string, error) {
		return current.Load(), nil
	}, "groups").SkipWhen(live.IsNil[string])

	sub := q.Subscribe(context.Background())
	defer sub.Close()

	name := "Party"
	current.Store(&name)
	hub.Publish("groups")

	got := receive(t, sub.Updates())
	require.NotNil(t, got)
	assert.Equal(t, "Party", *got)
}

func TestQueryFetchError(t *testing.T) {
	hub := live.NewHub()
	boom := errors.New("database is closed")
	q := live.NewQuery(hub, func(ctx context.Context) ([]string, error) {
		return nil, boom
	}, "groups")

	sub := q.Subscribe(context.Background())
	_, ok := <-sub.Updates()
	assert.False(t, ok)
	assert.ErrorIs(t, sub.Err(), boom)
	sub.Close()
}

func TestQueryContextCancel(t *testing.T) {
	hub := live.NewHub()
	q := live.NewQuery(hub, func(ctx context.Context) (int, error) {
		return 1, nil
	}, "groups")

	ctx, cancel := context.WithCancel(context.Background())
	sub := q.Subscribe(ctx)
	receive(t, sub.Updates())
	cancel()

	for range sub.Updates() {
	}
	assert.NoError(t, sub.Err())
	sub.Close()
}
