package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCaseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want CaseStatus
		ok   bool
	}{
		{"RAISED", CaseStatusRaised, true},
		{"assigned", CaseStatusAssigned, true},
		{"  Investigation_In_Progress  ", CaseStatusInvestigation, true},
		{"under_review", CaseStatusUnderReview, true},
		{"COMPLETED", CaseStatusCompleted, true},
		{"closed", CaseStatusClosed, true},
		{"DELETED", "", false},
		{"open", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseCaseStatus(tc.raw)
		require.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		require.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestCaseDeleted(t *testing.T) {
	var c Case
	require.False(t, c.Deleted())

	at := c.CreatedAt
	c.DeletedAt = &at
	require.True(t, c.Deleted())
}
