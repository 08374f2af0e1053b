package service

import (
	"context"

	"github.com/noah-isme/placement-api/internal/models"
)

// notificationDispatcher renders a template and hands it to the sink.
type notificationDispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) (*models.Notification, error)
}

// selectionCachePattern matches every cached selection payload.
const selectionCachePattern = "selection:*"
