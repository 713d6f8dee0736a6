package domain

import (
	"strings"
	"time"
)

// CaseStatus enumerates the incident lifecycle states.
type CaseStatus string

const (
	CaseStatusRaised          CaseStatus = "RAISED"
	CaseStatusAssigned        CaseStatus = "ASSIGNED"
	CaseStatusInvestigation   CaseStatus = "INVESTIGATION_IN_PROGRESS"
	CaseStatusUnderReview     CaseStatus = "UNDER_REVIEW"
	CaseStatusCompleted       CaseStatus = "COMPLETED"
	CaseStatusClosed          CaseStatus = "CLOSED"
)

// ParseCaseStatus maps a raw status string onto the closed status set.
// Matching is case-insensitive; unrecognized values are rejected rather
// than silently rewritten.
func ParseCaseStatus(raw string) (CaseStatus, bool) {
	switch CaseStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case CaseStatusRaised:
		return CaseStatusRaised, true
	case CaseStatusAssigned:
		return CaseStatusAssigned, true
	case CaseStatusInvestigation:
		return CaseStatusInvestigation, true
	case CaseStatusUnderReview:
		return CaseStatusUnderReview, true
	case CaseStatusCompleted:
		return CaseStatusCompleted, true
	case CaseStatusClosed:
		return CaseStatusClosed, true
	}
	return "", false
}

// CaseType distinguishes incidents from hazard observations.
type CaseType string

const (
	CaseTypeIncident CaseType = "INCIDENT"
	CaseTypeHazard   CaseType = "HAZARD"
)

// Case is the aggregate for a reported workplace incident. Status moves
// only through the case service; nothing else writes it.
type Case struct {
	ID               string
	CaseNumber       string
	Type             CaseType
	Category         string
	Severity         string
	Status           CaseStatus
	Description      string
	Location         *string
	Latitude         *float64
	Longitude        *float64
	ImmediateActions *string
	PeopleImpacted   int
	IsEscalated      bool
	EscalatedAt      *time.Time
	EscalationReason *string
	ReportedByID     string
	BuildingID       string
	DepartmentID     *string
	OccurredAt       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// Deleted reports whether the case has been soft-deleted.
func (c *Case) Deleted() bool {
	return c.DeletedAt != nil
}
