package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/repository"
)

var slaEpoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func minuteRule(resolutionMinutes int) domain.SLARule {
	return domain.SLARule{
		ID:                "rule-1",
		Category:          "injury",
		Severity:          "high",
		ResponseMinutes:   resolutionMinutes / 4,
		ResolutionMinutes: resolutionMinutes,
	}
}

func trackingFor(rule domain.SLARule) domain.SLATracking {
	return domain.SLATracking{
		ID:              "tracking-1",
		CaseID:          "case-1",
		SLAID:           rule.ID,
		ResponseDueAt:   slaEpoch.Add(time.Duration(rule.ResponseMinutes) * time.Minute),
		ResolutionDueAt: slaEpoch.Add(time.Duration(rule.ResolutionMinutes) * time.Minute),
	}
}

func TestComputeViewHealthBoundaries(t *testing.T) {
	rule := minuteRule(60)
	tracking := trackingFor(rule)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    domain.SLAHealth
	}{
		{"fresh", 0, domain.SLAHealthOnTrack},
		{"just inside", 44 * time.Minute, domain.SLAHealthOnTrack},
		{"exactly a quarter left", 45 * time.Minute, domain.SLAHealthOnTrack},
		{"under a quarter left", 46 * time.Minute, domain.SLAHealthWarning},
		{"at the deadline", 60 * time.Minute, domain.SLAHealthWarning},
		{"past the deadline", 61 * time.Minute, domain.SLAHealthBreached},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := ComputeView(tracking, rule, slaEpoch.Add(tc.elapsed))
			require.Equal(t, tc.want, view.SlaStatus)
		})
	}
}

func TestComputeViewPersistedFlagWinsOverClock(t *testing.T) {
	rule := minuteRule(60)
	tracking := trackingFor(rule)
	tracking.ResolutionBreached = true

	view := ComputeView(tracking, rule, slaEpoch)
	require.Equal(t, domain.SLAHealthBreached, view.SlaStatus)
	require.True(t, view.ResolutionBreached)
}

func TestComputeViewHoursAndProgress(t *testing.T) {
	rule := minuteRule(120)
	tracking := trackingFor(rule)

	view := ComputeView(tracking, rule, slaEpoch.Add(30*time.Minute))
	require.Equal(t, 2.0, view.TotalResolutionHours)
	require.Equal(t, 1.5, view.ResolutionHoursLeft)
	require.Equal(t, 0.0, view.ResponseHoursLeft)
	require.Equal(t, 25, view.Progress)

	// progress clamps at 100 far past the deadline
	late := ComputeView(tracking, rule, slaEpoch.Add(10*time.Hour))
	require.Equal(t, 100, late.Progress)
	require.Equal(t, domain.SLAHealthBreached, late.SlaStatus)

	// and at 0 when tracking starts in the future
	early := ComputeView(tracking, rule, slaEpoch.Add(-time.Hour))
	require.Equal(t, 0, early.Progress)
}

func TestListTrackingOrdersByResolutionDeadline(t *testing.T) {
	store := &memSLAStore{trackings: map[string]*domain.SLATracking{}}
	rule := minuteRule(60)
	for i, caseID := range []string{"case-late", "case-soon"} {
		due := slaEpoch.Add(time.Duration(24-12*i) * time.Hour)
		store.rows = append(store.rows, repository.TrackedCaseRow{
			Tracking: domain.SLATracking{
				ID:              caseID + "-tracking",
				CaseID:          caseID,
				SLAID:           rule.ID,
				ResponseDueAt:   due.Add(-time.Hour),
				ResolutionDueAt: due,
			},
			Rule:       rule,
			CaseNumber: "INC-" + caseID,
			Category:   rule.Category,
			Severity:   rule.Severity,
			Status:     domain.CaseStatusAssigned,
			AssignedTo: &domain.UserRef{ID: "inv-1", Name: "Sipho"},
		})
	}

	svc := NewSLAService(store, observability.NewMetrics(), nil).
		WithClock(func() time.Time { return slaEpoch })

	views, err := svc.ListTracking(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "case-soon", views[0].CaseID)
	require.Equal(t, "case-late", views[1].CaseID)
	require.Equal(t, "INC-case-soon", views[0].CaseNumber)
	require.Equal(t, domain.CaseStatusAssigned, views[0].Status)
	require.Equal(t, "Sipho", views[0].AssignedTo.Name)
}

func TestListTrackingExcludesSoftDeletedCases(t *testing.T) {
	clock := &fakeClock{current: slaEpoch}
	caseStore := &memCaseStore{byID: map[string]*domain.Case{}, clock: clock}
	store := &memSLAStore{trackings: map[string]*domain.SLATracking{}, cases: caseStore}
	rule := minuteRule(60)

	for _, id := range []string{"case-live", "case-gone"} {
		require.NoError(t, caseStore.Create(context.Background(), &domain.Case{
			ID:         id,
			CaseNumber: "INC-" + id,
			Status:     domain.CaseStatusRaised,
		}))
		store.rows = append(store.rows, repository.TrackedCaseRow{
			Tracking: domain.SLATracking{
				ID:              id + "-tracking",
				CaseID:          id,
				SLAID:           rule.ID,
				ResponseDueAt:   slaEpoch.Add(15 * time.Minute),
				ResolutionDueAt: slaEpoch.Add(time.Hour),
			},
			Rule:       rule,
			CaseNumber: "INC-" + id,
		})
	}

	svc := NewSLAService(store, observability.NewMetrics(), nil).
		WithClock(func() time.Time { return slaEpoch })

	views, err := svc.ListTracking(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)

	_, err = caseStore.SoftDelete(context.Background(), "case-gone", slaEpoch.Add(time.Minute))
	require.NoError(t, err)

	views, err = svc.ListTracking(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "case-live", views[0].CaseID)
}

func TestSweepBreachesIsMonotonicAndIdempotent(t *testing.T) {
	store := &memSLAStore{trackings: map[string]*domain.SLATracking{}}
	rule := minuteRule(60)
	tracking := trackingFor(rule)
	store.rows = append(store.rows, repository.TrackedCaseRow{Tracking: tracking, Rule: rule})

	metrics := observability.NewMetrics()
	svc := NewSLAService(store, metrics, nil).
		WithClock(func() time.Time { return slaEpoch.Add(2 * time.Hour) })

	flagged, err := svc.SweepBreaches(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), flagged)
	require.True(t, store.rows[0].Tracking.ResponseBreached)
	require.True(t, store.rows[0].Tracking.ResolutionBreached)

	flagged, err = svc.SweepBreaches(context.Background())
	require.NoError(t, err)
	require.Zero(t, flagged)

	runs, totalFlagged := metrics.SweepTotals()
	require.Equal(t, int64(2), runs)
	require.Equal(t, int64(2), totalFlagged)
}
