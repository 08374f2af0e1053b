package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/jobs"
)

type channelDeliverer struct {
	delivered chan models.Notification
}

func (d *channelDeliverer) Deliver(_ context.Context, n models.Notification) error {
	d.delivered <- n
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	values   []interface{}
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.values = append(p.values, value)
	return p.err
}

func TestAsyncNotifierDeliversInBackground(t *testing.T) {
	deliverer := &channelDeliverer{delivered: make(chan models.Notification, 1)}
	metrics := NewMetricsService()
	notifier := NewAsyncNotifier(deliverer, jobs.QueueConfig{Workers: 1}, metrics, nil)
	notifier.Start(context.Background())
	defer notifier.Stop()

	notifier.Notify(context.Background(), models.Notification{ID: "n-1", Kind: models.TemplateFinalSelection, Action: models.DispatchSend})

	select {
	case got := <-deliverer.delivered:
		assert.Equal(t, "n-1", got.ID)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
	assert.Equal(t, uint64(1), metrics.Snapshot().NotificationsDispatched)
}

func TestAsyncNotifierDropsWhenStopped(t *testing.T) {
	deliverer := &channelDeliverer{delivered: make(chan models.Notification, 1)}
	notifier := NewAsyncNotifier(deliverer, jobs.QueueConfig{}, nil, nil)

	assert.NotPanics(t, func() {
		notifier.Notify(context.Background(), models.Notification{ID: "dropped"})
	})
	select {
	case <-deliverer.delivered:
		t.Fatal("stopped notifier must not deliver")
	default:
	}
}

func TestRedisDelivererPublishesOnChannel(t *testing.T) {
	publisher := &recordingPublisher{}
	deliverer := NewRedisDeliverer(publisher, "")

	notification := models.Notification{ID: "n-2", Kind: models.TemplateJobPosting}
	require.NoError(t, deliverer.Deliver(context.Background(), notification))
	assert.Equal(t, []string{"placement:notifications"}, publisher.channels)
	assert.Equal(t, notification, publisher.values[0])

	publisher.err = errors.New("connection refused")
	assert.Error(t, deliverer.Deliver(context.Background(), notification))
}

func TestLogDelivererNeverFails(t *testing.T) {
	assert.NoError(t, NewLogDeliverer(nil).Deliver(context.Background(), models.Notification{ID: "n-3"}))
}
