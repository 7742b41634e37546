package services

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
)

// ChangeSource is the subscription side of the task store.
type ChangeSource interface {
	Subscribe(fn func(domain.Change)) (unsubscribe func())
}

// ChangeMessage is the JSON published for every store change.
type ChangeMessage struct {
	Kind     domain.ChangeKind `json:"kind"`
	TaskID   string            `json:"task_id,omitempty"`
	Category string            `json:"category,omitempty"`
	Revision uint64            `json:"revision"`
	At       time.Time         `json:"at"`
}

// ChangePublisher forwards store changes to a Redis channel so that
// out-of-process views can re-render. Changes are queued and published by
// Run; when the queue is full the change is dropped and logged, since
// subscribers only need the latest revision to resync.
type ChangePublisher struct {
	client  *redislib.Client
	channel string
	logger  *zap.Logger
	queue   chan ChangeMessage
	done    chan struct{}
}

func NewChangePublisher(client *redislib.Client, channel string, logger *zap.Logger) *ChangePublisher {
	if channel == "" {
		channel = "todo:changes"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangePublisher{
		client:  client,
		channel: channel,
		logger:  logger,
		queue:   make(chan ChangeMessage, 256),
		done:    make(chan struct{}),
	}
}

// Attach subscribes the publisher to source and returns the unsubscribe func.
func (p *ChangePublisher) Attach(source ChangeSource) func() {
	return source.Subscribe(p.enqueue)
}

func (p *ChangePublisher) enqueue(change domain.Change) {
	msg := ChangeMessage{
		Kind:     change.Kind,
		TaskID:   change.TaskID,
		Category: change.Category,
		Revision: change.Revision,
		At:       time.Now().UTC(),
	}
	select {
	case p.queue <- msg:
	default:
		p.logger.Warn("change queue full, dropping change",
			zap.String("kind", string(change.Kind)),
			zap.Uint64("revision", change.Revision))
	}
}

// Run publishes queued changes until ctx is cancelled, then drains what is
// already queued.
func (p *ChangePublisher) Run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case msg := <-p.queue:
			p.publish(ctx, msg)
		case <-ctx.Done():
			p.drain()
			return
		}
	}
}

// Done is closed once Run has returned.
func (p *ChangePublisher) Done() <-chan struct{} {
	return p.done
}

func (p *ChangePublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case msg := <-p.queue:
			p.publish(ctx, msg)
		default:
			return
		}
	}
}

func (p *ChangePublisher) publish(ctx context.Context, msg ChangeMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("encode change", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil && ctx.Err() == nil {
		p.logger.Warn("publish change failed",
			zap.String("channel", p.channel),
			zap.Uint64("revision", msg.Revision),
			zap.Error(err))
	}
}
