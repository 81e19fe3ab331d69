// Package notifications publishes comment events through Redis and fans them out to
// websocket subscribers of each board.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// CommentEventType names what happened to a comment.
type CommentEventType string

const (
	CommentCreated CommentEventType = "comment_created"
	CommentUpdated CommentEventType = "comment_updated"
	CommentDeleted CommentEventType = "comment_deleted"
	CommentLiked   CommentEventType = "comment_liked"

	boardCommentsPattern = "boards:*:comments"
)

// CommentEvent is the payload delivered on a board's comment channel.
type CommentEvent struct {
	Type       CommentEventType    `json:"type"`
	BoardID    uint                `json:"boardId"`
	ActorID    uint                `json:"actorId"`
	Comment    *models.CommentView `json:"comment"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// BoardCommentsChannel is the Redis channel carrying comment events of one board.
func BoardCommentsChannel(boardID uint) string {
	return fmt.Sprintf("boards:%d:comments", boardID)
}

// ParseBoardCommentsChannel extracts the board id from a channel name.
func ParseBoardCommentsChannel(channel string) (uint, error) {
	var boardID uint
	if _, err := fmt.Sscanf(channel, "boards:%d:comments", &boardID); err != nil {
		return 0, fmt.Errorf("invalid board channel %q: %w", channel, err)
	}
	return boardID, nil
}

// Notifier provides helpers to publish comment events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. With a nil client every publish is a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishCommentEvent publishes ev on the board's channel.
func (n *Notifier) PublishCommentEvent(ctx context.Context, ev CommentEvent) error {
	if n.rdb == nil {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal comment event: %w", err)
	}

	channel := BoardCommentsChannel(ev.BoardID)
	ctx, span := observability.DefaultSpans().Redis(ctx, "publish", attribute.String("messaging.destination.name", channel))
	err = n.rdb.Publish(ctx, channel, payload).Err()
	observability.Finish(span, err)
	if err != nil {
		return err
	}
	observability.CommentEvents.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

// StartPatternSubscriber subscribes to every board comment channel and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, boardCommentsPattern)
	// Wait for the subscription to be confirmed so no early publish is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", boardCommentsPattern, err)
	}
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
							middleware.Logger.Error("Panic in comment subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
