package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/jobs"
)

// Notifier hands a notification to the delivery sink without waiting for it.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification)
}

// NotificationDeliverer performs the actual delivery of one notification.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, notification models.Notification) error
}

// LogDeliverer writes notifications to the structured log.
type LogDeliverer struct {
	logger *zap.Logger
}

// NewLogDeliverer constructs a LogDeliverer.
func NewLogDeliverer(logger *zap.Logger) *LogDeliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDeliverer{logger: logger}
}

// Deliver implements NotificationDeliverer.
func (d *LogDeliverer) Deliver(_ context.Context, n models.Notification) error {
	d.logger.Info("notification delivered",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("action", string(n.Action)),
		zap.String("reference", n.Reference),
		zap.String("subject", n.Subject),
	)
	return nil
}

type messagePublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// RedisDeliverer publishes notifications as JSON on a Redis channel.
type RedisDeliverer struct {
	publisher messagePublisher
	channel   string
}

// NewRedisDeliverer constructs a RedisDeliverer.
func NewRedisDeliverer(publisher messagePublisher, channel string) *RedisDeliverer {
	if channel == "" {
		channel = "placement:notifications"
	}
	return &RedisDeliverer{publisher: publisher, channel: channel}
}

// Deliver implements NotificationDeliverer.
func (d *RedisDeliverer) Deliver(ctx context.Context, n models.Notification) error {
	return d.publisher.Publish(ctx, d.channel, n)
}

// AsyncNotifier queues notifications on a worker pool. A full queue drops the
// notification with a warning; callers are never blocked.
type AsyncNotifier struct {
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAsyncNotifier wires a deliverer behind a jobs.Queue.
func NewAsyncNotifier(deliverer NotificationDeliverer, cfg jobs.QueueConfig, metrics *MetricsService, logger *zap.Logger) *AsyncNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	handler := func(ctx context.Context, job jobs.Job) error {
		notification, ok := job.Payload.(models.Notification)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		return deliverer.Deliver(ctx, notification)
	}
	return &AsyncNotifier{
		queue:   jobs.NewQueue("notifications", handler, cfg),
		metrics: metrics,
		logger:  logger,
	}
}

// Start begins processing.
func (n *AsyncNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop halts the workers; undelivered notifications are dropped.
func (n *AsyncNotifier) Stop() {
	n.queue.Stop()
}

// Notify implements Notifier.
func (n *AsyncNotifier) Notify(_ context.Context, notification models.Notification) {
	n.metrics.RecordNotification(notification.Kind, notification.Action)
	job := jobs.Job{ID: notification.ID, Type: string(notification.Kind), Payload: notification}
	if err := n.queue.TryEnqueue(job); err != nil {
		n.logger.Warn("notification dropped", zap.String("id", notification.ID), zap.String("kind", string(notification.Kind)), zap.Error(err))
	}
}
