package notify

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LogNotifier writes fired notifications to the log. It is the fallback when
// no delivery channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.logger.Info("task due",
		zap.String("task_id", notification.TaskID),
		zap.Int32("key", notification.Key),
		zap.String("title", notification.Title),
		zap.Time("due_at", notification.DueAt))
	return nil
}

// RedisNotifier publishes fired notifications as JSON on a Redis channel.
type RedisNotifier struct {
	client  *redislib.Client
	channel string
}

func NewRedisNotifier(client *redislib.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = "todo:notifications"
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, payload).Err()
}

// Multi fans a notification out to several notifiers and returns the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, notification Notification) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, notification); err != nil && first == nil {
			first = err
		}
	}
	return first
}
