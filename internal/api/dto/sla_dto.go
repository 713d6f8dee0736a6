package dto

import "time"

// SlaTrackingResponse is one tracked case with its computed deadline picture.
type SlaTrackingResponse struct {
	ID                   string           `json:"id"`
	CaseID               string           `json:"case_id"`
	CaseNumber           string           `json:"case_number"`
	Category             string           `json:"category"`
	Severity             string           `json:"severity"`
	Status               string           `json:"status"`
	IsEscalated          bool             `json:"is_escalated"`
	AssignedTo           *UserRefResponse `json:"assigned_to,omitempty"`
	ResponseDueAt        time.Time        `json:"response_due_at"`
	ResolutionDueAt      time.Time        `json:"resolution_due_at"`
	ResponseBreached     bool             `json:"response_breached"`
	ResolutionBreached   bool             `json:"resolution_breached"`
	ResponseHoursLeft    float64          `json:"response_hours_left"`
	ResolutionHoursLeft  float64          `json:"resolution_hours_left"`
	TotalResolutionHours float64          `json:"total_resolution_hours"`
	Progress             int              `json:"progress"`
	SlaStatus            string           `json:"sla_status"`
}
