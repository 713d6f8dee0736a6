package dto

import "time"

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Module      string    `json:"module"`
	ReferenceID string    `json:"reference_id,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnreadCountResponse wraps the unread counter.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
