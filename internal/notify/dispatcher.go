package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
)

// Dispatcher is the fire-and-forget notification contract. Callers treat a
// failed dispatch as a log-worthy event, never as an operation failure.
type Dispatcher interface {
	Notify(ctx context.Context, userID, title, message, module string, referenceID string) error
}

// storeDispatcher lands notifications in the inbox table. Delivery to
// external channels (email, push) happens outside this service.
type storeDispatcher struct {
	store  repository.NotificationStore
	cache  *UnreadCache
	logger *zap.Logger
}

// NewStoreDispatcher builds the inbox-backed dispatcher.
func NewStoreDispatcher(store repository.NotificationStore, cache *UnreadCache, logger *zap.Logger) Dispatcher {
	return &storeDispatcher{store: store, cache: cache, logger: logger}
}

func (d *storeDispatcher) Notify(ctx context.Context, userID, title, message, module string, referenceID string) error {
	notification := &domain.Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
		Module: module,
	}
	notification.Message = message
	if referenceID != "" {
		notification.ReferenceID = &referenceID
	}

	if err := d.store.Create(ctx, notification); err != nil {
		d.logger.Warn("notification dispatch failed",
			zap.String("user_id", userID),
			zap.String("module", module),
			zap.Error(err))
		return err
	}
	d.cache.Invalidate(ctx, userID)
	return nil
}
