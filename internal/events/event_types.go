package events

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated       EventType = "case_created"
	EventCaseAssigned      EventType = "case_assigned"
	EventCaseStatusChanged EventType = "case_status_changed"
	EventCaseEscalated     EventType = "case_escalated"
	EventCaseDeleted       EventType = "case_deleted"
)

// Event represents a domain event emitted after a case operation commits.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	CaseID    string    `json:"case_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	CaseNumber string          `json:"case_number"`
	Category   string          `json:"category"`
	Severity   string          `json:"severity"`
	BuildingID string          `json:"building_id"`
	Type       domain.CaseType `json:"type"`
}

// CaseAssignedPayload payload.
type CaseAssignedPayload struct {
	AssignedToID string `json:"assigned_to_id"`
	AssignedByID string `json:"assigned_by_id"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	OldStatus domain.CaseStatus `json:"old_status"`
	NewStatus domain.CaseStatus `json:"new_status"`
	Comment   string            `json:"comment,omitempty"`
}

// CaseEscalatedPayload payload.
type CaseEscalatedPayload struct {
	AssignedToID string `json:"assigned_to_id"`
	Reason       string `json:"reason"`
}
