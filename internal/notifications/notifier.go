// Package notifications publishes moderation-queue events over Redis
// pub/sub so moderator tooling can react without polling.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// ModerationChannel carries every moderation-queue event.
const ModerationChannel = "moderation:events"

// ModerationEvent is the payload published for queue changes.
type ModerationEvent struct {
	Kind      string    `json:"kind"` // comment_pending, comment_moderated, article_submitted
	CommentID uint      `json:"comment_id,omitempty"`
	ArticleID uint      `json:"article_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	ActorID   uint      `json:"actor_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier provides helpers to publish moderation events into Redis channels.
// A nil Redis client disables publishing; every method degrades to a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends one moderation event.
func (n *Notifier) Publish(ctx context.Context, event ModerationEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, ModerationChannel, payload).Err()
}

// CommentPending publishes a "comment entered the queue" event.
func (n *Notifier) CommentPending(ctx context.Context, commentID, articleID, authorID uint) error {
	return n.Publish(ctx, ModerationEvent{
		Kind:      "comment_pending",
		CommentID: commentID,
		ArticleID: articleID,
		ActorID:   authorID,
	})
}

// CommentModerated publishes a moderation decision event.
func (n *Notifier) CommentModerated(ctx context.Context, commentID uint, status string, moderatorID uint) error {
	return n.Publish(ctx, ModerationEvent{
		Kind:      "comment_moderated",
		CommentID: commentID,
		Status:    status,
		ActorID:   moderatorID,
	})
}

// ArticleSubmitted publishes an "article awaits editorial review" event.
func (n *Notifier) ArticleSubmitted(ctx context.Context, articleID, authorID uint) error {
	return n.Publish(ctx, ModerationEvent{
		Kind:      "article_submitted",
		ArticleID: articleID,
		ActorID:   authorID,
	})
}

// StartSubscriber subscribes to the moderation channel and calls onEvent
// for each decoded event until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onEvent func(ModerationEvent)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ModerationChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in moderation subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					var event ModerationEvent
					if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
						log.Printf("moderation subscriber: bad payload: %v", err)
						return
					}
					onEvent(event)
				}()
			}
		}
	}()

	return nil
}
