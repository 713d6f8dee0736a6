package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// SlaView is the request-time deadline picture of one tracked case.
type SlaView struct {
	ID                   string
	CaseID               string
	CaseNumber           string
	Category             string
	Severity             string
	Status               domain.CaseStatus
	IsEscalated          bool
	AssignedTo           *domain.UserRef
	ResponseDueAt        time.Time
	ResolutionDueAt      time.Time
	ResponseBreached     bool
	ResolutionBreached   bool
	ResponseHoursLeft    float64
	ResolutionHoursLeft  float64
	TotalResolutionHours float64
	Progress             int
	SlaStatus            domain.SLAHealth
}

// ComputeView derives the deadline picture for one tracking row at the given
// instant. It is a pure read: the persisted breach flags are consulted but
// never written, so the label can show "breached" before the sweep has
// flagged the row.
func ComputeView(tracking domain.SLATracking, rule domain.SLARule, now time.Time) SlaView {
	responseHoursLeft := tracking.ResponseDueAt.Sub(now).Hours()
	resolutionHoursLeft := tracking.ResolutionDueAt.Sub(now).Hours()
	totalResolutionHours := float64(rule.ResolutionMinutes) / 60

	var progress float64
	if totalResolutionHours > 0 {
		elapsedHours := totalResolutionHours - resolutionHoursLeft
		progress = math.Min(100, math.Max(0, elapsedHours/totalResolutionHours*100))
	}

	var health domain.SLAHealth
	switch {
	case tracking.ResolutionBreached || resolutionHoursLeft < 0:
		health = domain.SLAHealthBreached
	case resolutionHoursLeft < totalResolutionHours*0.25:
		health = domain.SLAHealthWarning
	default:
		health = domain.SLAHealthOnTrack
	}

	return SlaView{
		ID:                   tracking.ID,
		CaseID:               tracking.CaseID,
		ResponseDueAt:        tracking.ResponseDueAt,
		ResolutionDueAt:      tracking.ResolutionDueAt,
		ResponseBreached:     tracking.ResponseBreached,
		ResolutionBreached:   tracking.ResolutionBreached,
		ResponseHoursLeft:    roundTenth(responseHoursLeft),
		ResolutionHoursLeft:  roundTenth(resolutionHoursLeft),
		TotalResolutionHours: totalResolutionHours,
		Progress:             int(math.Round(progress)),
		SlaStatus:            health,
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// SLAService exposes the tracking list and runs the periodic breach sweep.
// The sweep and the read-time label stay deliberately separate: the sweep
// persists write-once flags, ComputeView never writes anything.
type SLAService struct {
	sla     repository.SLAStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewSLAService constructs the service.
func NewSLAService(sla repository.SLAStore, metrics *observability.Metrics, logger *zap.Logger) *SLAService {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAService{sla: sla, metrics: metrics, logger: logger, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *SLAService) WithClock(now func() time.Time) *SLAService {
	s.now = now
	return s
}

// ListTracking returns one view per tracked, non-deleted case, soonest
// resolution deadline first.
func (s *SLAService) ListTracking(ctx context.Context) ([]SlaView, error) {
	rows, err := s.sla.ListTracking(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	views := make([]SlaView, 0, len(rows))
	for _, row := range rows {
		view := ComputeView(row.Tracking, row.Rule, now)
		view.CaseNumber = row.CaseNumber
		view.Category = row.Category
		view.Severity = row.Severity
		view.Status = row.Status
		view.IsEscalated = row.IsEscalated
		view.AssignedTo = row.AssignedTo
		views = append(views, view)
	}
	return views, nil
}

// SweepBreaches flips overdue breach flags. Flags only ever move false to
// true, so overlapping or replayed sweeps are harmless.
func (s *SLAService) SweepBreaches(ctx context.Context) (int64, error) {
	flagged, err := s.sla.SweepBreaches(ctx, s.now())
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.metrics.RecordSweep(flagged)
	if flagged > 0 {
		s.logger.Info("sla breach sweep flagged deadlines", zap.Int64("flagged", flagged))
	}
	return flagged, nil
}
