package domain

import "time"

// Notification is an inbox entry produced by the dispatch contract.
// Delivery to external channels is somebody else's job.
type Notification struct {
	ID          string
	UserID      string
	Title       string
	Message     string
	Module      string
	ReferenceID *string
	IsRead      bool
	CreatedAt   time.Time
}
