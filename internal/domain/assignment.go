package domain

import "time"

// AssignmentRecord is one entry in the append-only assignment ledger.
// Reassignments and escalations both append new records; existing records
// are never edited or removed.
type AssignmentRecord struct {
	ID           string
	Seq          int64
	CaseID       string
	AssignedToID string
	AssignedByID string
	AssignedAt   time.Time
}
