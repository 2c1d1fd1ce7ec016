package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilNotifierIsNoop(t *testing.T) {
	ctx := context.Background()

	var n *Notifier
	assert.NoError(t, n.Publish(ctx, ModerationEvent{Kind: "comment_pending"}))

	n = NewNotifier(nil)
	assert.NoError(t, n.CommentPending(ctx, 1, 2, 3))
	assert.NoError(t, n.CommentModerated(ctx, 1, "approved", 9))
	assert.NoError(t, n.ArticleSubmitted(ctx, 4, 2))
	assert.NoError(t, n.StartSubscriber(ctx, func(ModerationEvent) {}))
}

func TestPublish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	n := NewNotifier(rdb)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, ModerationChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	require.NoError(t, n.CommentPending(ctx, 5, 1, 2))

	select {
	case msg := <-ch:
		var event ModerationEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, "comment_pending", event.Kind)
		assert.Equal(t, uint(5), event.CommentID)
		assert.Equal(t, uint(1), event.ArticleID)
		assert.Equal(t, uint(2), event.ActorID)
		assert.False(t, event.At.IsZero(), "publish stamps the event time")
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestStartSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	received := make(chan ModerationEvent, 1)
	require.NoError(t, n.StartSubscriber(ctx, func(event ModerationEvent) {
		received <- event
	}))

	// Give the subscriber a moment to attach before publishing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, n.CommentModerated(ctx, 7, "rejected", 9))

	select {
	case event := <-received:
		assert.Equal(t, "comment_moderated", event.Kind)
		assert.Equal(t, uint(7), event.CommentID)
		assert.Equal(t, "rejected", event.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber saw no event")
	}
}
