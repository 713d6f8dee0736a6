package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// CreateCaseRequest payload.
type CreateCaseRequest struct {
	ID               string          `json:"id,omitempty"`
	CaseNumber       string          `json:"case_number,omitempty"`
	Type             domain.CaseType `json:"type,omitempty"`
	Category         string          `json:"category,omitempty"`
	Severity         string          `json:"severity,omitempty"`
	Description      string          `json:"description"`
	BuildingID       string          `json:"building_id,omitempty"`
	OccurredAt       *time.Time      `json:"occurred_at,omitempty"`
	Location         *string         `json:"location,omitempty"`
	Latitude         *float64        `json:"latitude,omitempty"`
	Longitude        *float64        `json:"longitude,omitempty"`
	ImmediateActions *string         `json:"immediate_actions,omitempty"`
	PeopleImpacted   int             `json:"people_impacted,omitempty"`
}

// AssignCaseRequest payload.
type AssignCaseRequest struct {
	AssignedToID string `json:"assigned_to_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// EscalateCaseRequest payload.
type EscalateCaseRequest struct {
	AssignedToID string `json:"assigned_to_id"`
	Reason       string `json:"reason"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Comment string `json:"comment"`
}

// AddEvidenceRequest payload.
type AddEvidenceRequest struct {
	FileURL      string  `json:"file_url"`
	FileType     string  `json:"file_type,omitempty"`
	UploaderRole *string `json:"uploader_role,omitempty"`
}

// UserRefResponse is the embedded user shape.
type UserRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CaseSummaryResponse is the list-view shape.
type CaseSummaryResponse struct {
	ID             string            `json:"id"`
	CaseNumber     string            `json:"case_number"`
	Type           domain.CaseType   `json:"type"`
	Category       string            `json:"category"`
	Severity       string            `json:"severity"`
	Status         domain.CaseStatus `json:"status"`
	Description    string            `json:"description"`
	IsEscalated    bool              `json:"is_escalated"`
	BuildingID     string            `json:"building_id"`
	ReportedByID   string            `json:"reported_by_id"`
	AssignedTo     *UserRefResponse  `json:"assigned_to,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	PeopleImpacted int               `json:"people_impacted"`
}

// CaseListResponse wraps a page of summaries with the unpaginated total.
type CaseListResponse struct {
	Data  []CaseSummaryResponse `json:"data"`
	Total int64                 `json:"total"`
}

// CaseDetailResponse provides the full case read model.
type CaseDetailResponse struct {
	CaseSummaryResponse
	Location         *string            `json:"location,omitempty"`
	Latitude         *float64           `json:"latitude,omitempty"`
	Longitude        *float64           `json:"longitude,omitempty"`
	ImmediateActions *string            `json:"immediate_actions,omitempty"`
	EscalatedAt      *time.Time         `json:"escalated_at,omitempty"`
	EscalationReason *string            `json:"escalation_reason,omitempty"`
	ReportedBy       *UserRefResponse   `json:"reported_by,omitempty"`
	Evidence         []EvidenceResponse `json:"evidence"`
	Comments         []CommentResponse  `json:"comments"`
	Timeline         []ActivityResponse `json:"timeline"`
}

// EvidenceResponse is a stored file reference.
type EvidenceResponse struct {
	ID           string    `json:"id"`
	FileURL      string    `json:"file_url"`
	FileType     string    `json:"file_type"`
	UploaderRole *string   `json:"uploader_role,omitempty"`
	UploadedByID *string   `json:"uploaded_by_id,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// CommentResponse is one case comment with its author.
type CommentResponse struct {
	ID        string           `json:"id"`
	Comment   string           `json:"comment"`
	User      *UserRefResponse `json:"user,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ActivityResponse is one journal entry.
type ActivityResponse struct {
	ID          string            `json:"id"`
	OldStatus   domain.CaseStatus `json:"old_status"`
	NewStatus   domain.CaseStatus `json:"new_status"`
	Description string            `json:"description"`
	User        *UserRefResponse  `json:"user,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}
