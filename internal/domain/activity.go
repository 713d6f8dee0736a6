package domain

import "time"

// ActivityLogEntry is one entry in the append-only status journal. OldStatus
// is read from the case's persisted status immediately before the write, so
// per case the entries form a causally ordered chain.
type ActivityLogEntry struct {
	ID        string
	CaseID    string
	OldStatus CaseStatus
	NewStatus CaseStatus
	Comments  string
	UserID    string
	ChangedAt time.Time
}
