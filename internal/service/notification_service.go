package service

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/notify"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// NotificationService serves the per-user notification inbox.
type NotificationService struct {
	store repository.NotificationStore
	cache *notify.UnreadCache
}

// NewNotificationService constructs the service.
func NewNotificationService(store repository.NotificationStore, cache *notify.UnreadCache) *NotificationService {
	return &NotificationService{store: store, cache: cache}
}

// ListForUser returns the newest notifications for a user.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, take int) ([]domain.Notification, error) {
	notifications, err := s.store.ListForUser(ctx, userID, take)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// UnreadCount returns the unread counter, served from cache when warm.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if count, ok := s.cache.Get(ctx, userID); ok {
		return count, nil
	}
	count, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.cache.Set(ctx, userID, count)
	return count, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if err := s.store.MarkRead(ctx, notificationID, userID); err != nil {
		return apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// MarkAllRead flags every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.store.MarkAllRead(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}
