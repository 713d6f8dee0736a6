package domain

import "time"

// EvidenceRef is a stored reference to an evidence file. The bytes live in
// external blob storage; the service only stores and echoes the reference.
type EvidenceRef struct {
	ID           string
	CaseID       string
	FileURL      string
	FileType     string
	UploaderRole *string
	UploadedByID *string
	UploadedAt   time.Time
}

// CaseComment is a free-text remark on a case, distinct from the status
// journal.
type CaseComment struct {
	ID        string
	CaseID    string
	UserID    string
	Comment   string
	CreatedAt time.Time
}
