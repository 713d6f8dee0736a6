package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

func TestListRejectsUnrecognizedStatusFilter(t *testing.T) {
	f := newMemFixture()

	_, _, err := f.service.List(context.Background(), ListCasesInput{Status: "BOGUS"})
	require.True(t, apperrors.IsValidation(err))
}

func TestListFiltersAndExcludesDeleted(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	f.users.buildings[reporter.ID] = "building-1"

	first, err := f.service.Create(context.Background(), reporter.ID, CreateCaseInput{Description: "first"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.service.Create(context.Background(), reporter.ID, CreateCaseInput{Description: "second"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	third, err := f.service.Create(context.Background(), reporter.ID, CreateCaseInput{Description: "third"})
	require.NoError(t, err)

	_, err = f.service.SoftDelete(context.Background(), third.ID)
	require.NoError(t, err)

	summaries, total, err := f.service.List(context.Background(), ListCasesInput{Status: "raised"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, summaries, 2)
	// newest first
	require.Equal(t, second.ID, summaries[0].Case.ID)
	require.Equal(t, first.ID, summaries[1].Case.ID)
}

func TestListResolvesCurrentAssignee(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	supervisor := f.addUser("sup-1", "Anele", domain.RoleSupervisor)
	assignee := f.addUser("inv-1", "Sipho", domain.RoleOHSPractitioner)
	c := createCase(t, f, reporter.ID)

	_, err := f.service.Assign(context.Background(), c.ID, assignee.ID, supervisor.ID)
	require.NoError(t, err)

	summaries, _, err := f.service.List(context.Background(), ListCasesInput{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].AssignedTo)
	require.Equal(t, "Sipho", summaries[0].AssignedTo.Name)
}

func TestGetResolvesByCaseNumber(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	c := createCase(t, f, reporter.ID)

	detail, err := f.service.Get(context.Background(), c.CaseNumber)
	require.NoError(t, err)
	require.Equal(t, c.ID, detail.Case.ID)
	require.NotNil(t, detail.ReportedBy)
	require.Equal(t, "Thandi", detail.ReportedBy.Name)
	require.Len(t, detail.Timeline, 1)
	require.Nil(t, detail.AssignedTo)

	_, err = f.service.Get(context.Background(), "INC-NOPE")
	require.True(t, apperrors.IsNotFound(err))
}

func TestGetResolvesByID(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	f.users.buildings[reporter.ID] = "building-1"

	created, err := f.service.Create(context.Background(), reporter.ID, CreateCaseInput{
		ID:          "7be0f9d4-2345-4abc-9def-0123456789ab",
		Description: "By id",
	})
	require.NoError(t, err)

	detail, err := f.service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.CaseNumber, detail.Case.CaseNumber)
}

func TestTimelineDegradesUnknownUsers(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	c := createCase(t, f, reporter.ID)

	delete(f.users.byID, reporter.ID)

	timeline, err := f.service.Timeline(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	require.NotNil(t, timeline[0].User)
	require.Equal(t, reporter.ID, timeline[0].User.ID)
	require.Empty(t, timeline[0].User.Name)
}

func TestAddEvidenceRequiresFileURL(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	c := createCase(t, f, reporter.ID)

	_, err := f.service.AddEvidence(context.Background(), c.ID, reporter.ID, "  ", "", nil)
	require.True(t, apperrors.IsValidation(err))

	ref, err := f.service.AddEvidence(context.Background(), c.ID, reporter.ID, "s3://evidence/photo.jpg", "", nil)
	require.NoError(t, err)
	require.Equal(t, "unknown", ref.FileType)
	require.NotNil(t, ref.UploadedByID)
	require.Equal(t, reporter.ID, *ref.UploadedByID)

	refs, err := f.service.ListEvidence(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestAddCommentTrimsAndRequiresBody(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	c := createCase(t, f, reporter.ID)

	_, err := f.service.AddComment(context.Background(), c.ID, reporter.ID, "   ")
	require.True(t, apperrors.IsValidation(err))

	view, err := f.service.AddComment(context.Background(), c.ID, reporter.ID, "  spoke to witness  ")
	require.NoError(t, err)
	require.Equal(t, "spoke to witness", view.Comment)
	require.NotNil(t, view.User)
	require.Equal(t, "Thandi", view.User.Name)

	comments, err := f.service.ListComments(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
}

func TestCategoriesListsDistinctValues(t *testing.T) {
	f := newMemFixture()
	reporter := f.addUser("reporter-1", "Thandi", domain.RoleEmployee)
	f.users.buildings[reporter.ID] = "building-1"

	for _, category := range []string{"injury", "injury", "fire"} {
		_, err := f.service.Create(context.Background(), reporter.ID, CreateCaseInput{
			Description: "categorized",
			Category:    category,
		})
		require.NoError(t, err)
	}

	categories, err := f.service.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"fire", "injury"}, categories)
}
