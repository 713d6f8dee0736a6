package domain

import "time"

// SLARule pairs a (category, severity) classification with response and
// resolution time budgets in minutes.
type SLARule struct {
	ID                string
	Category          string
	Severity          string
	ResponseMinutes   int
	ResolutionMinutes int
	CreatedAt         time.Time
}

// SLATracking is the per-case deadline row, created at most once at case
// creation from a rule snapshot. The breach flags are write-once: the sweep
// only ever moves them false to true.
type SLATracking struct {
	ID                 string
	CaseID             string
	SLAID              string
	ResponseDueAt      time.Time
	ResolutionDueAt    time.Time
	ResponseBreached   bool
	ResolutionBreached bool
	CreatedAt          time.Time
}

// SLAHealth is the qualitative deadline label computed at read time.
type SLAHealth string

const (
	SLAHealthOnTrack  SLAHealth = "on-track"
	SLAHealthWarning  SLAHealth = "warning"
	SLAHealthBreached SLAHealth = "breached"
)
