package repository

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
)

// NotificationStore persists the notification inbox.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID string, take int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationStore struct {
	db Querier
}

// NewNotificationStore instantiates the store.
func NewNotificationStore(db Querier) NotificationStore {
	return &notificationStore{db: db}
}

func (s *notificationStore) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (id, user_id, title, message, module, reference_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return s.db.QueryRow(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Module,
		n.ReferenceID,
	).Scan(&n.CreatedAt)
}

func (s *notificationStore) ListForUser(ctx context.Context, userID string, take int) ([]domain.Notification, error) {
	if take <= 0 {
		take = 50
	}
	const query = `
        SELECT id, user_id, title, message, module, reference_id, is_read, created_at
        FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := s.db.Query(ctx, query, userID, take)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Module,
			&n.ReferenceID,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (s *notificationStore) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND is_read=false`, userID).Scan(&count)
	return count, err
}

func (s *notificationStore) MarkRead(ctx context.Context, notificationID, userID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET is_read=true WHERE id=$1 AND user_id=$2`, notificationID, userID)
	return err
}

func (s *notificationStore) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET is_read=true WHERE user_id=$1 AND is_read=false`, userID)
	return err
}
