package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/domain"
)

func TestHazardViewCountsAndLists(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	supervisor := f.addUser("sup-1", "Anele", domain.RoleSupervisor)
	f.users.buildings[reporter.ID] = "building-1"
	ctx := context.Background()

	hazardA, err := f.service.Create(ctx, reporter.ID, CreateCaseInput{
		Description: "Loose railing",
		Type:        domain.CaseTypeHazard,
	})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, reporter.ID, CreateCaseInput{
		Description: "Blocked exit",
		Type:        domain.CaseTypeHazard,
	})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, reporter.ID, CreateCaseInput{
		Description: "An incident, not a hazard",
	})
	require.NoError(t, err)

	_, err = f.service.Close(ctx, hazardA.ID, supervisor.ID)
	require.NoError(t, err)

	ohs := NewOHSService(f.cases)

	hazards, total, err := ohs.ListHazards(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, hazards, 2)
	for _, h := range hazards {
		require.Equal(t, domain.CaseTypeHazard, h.Type)
	}

	stats, err := ohs.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total)
	require.Equal(t, int64(1), stats.Open)
	require.Equal(t, int64(1), stats.Closed)
}
