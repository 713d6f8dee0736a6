package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// CaseSummary is the list-view projection with the current assignee
// resolved from the ledger.
type CaseSummary struct {
	Case       domain.Case
	AssignedTo *domain.UserRef
}

// CaseDetail is the full read model for a single case.
type CaseDetail struct {
	Case       domain.Case
	ReportedBy *domain.UserRef
	AssignedTo *domain.UserRef
	Evidence   []domain.EvidenceRef
	Comments   []CommentView
	Timeline   []ActivityView
}

// CommentView pairs a comment with its author.
type CommentView struct {
	ID        string
	Comment   string
	User      *domain.UserRef
	CreatedAt time.Time
}

// ActivityView is a journal entry enriched with the acting user.
type ActivityView struct {
	ID          string
	OldStatus   domain.CaseStatus
	NewStatus   domain.CaseStatus
	Description string
	User        *domain.UserRef
	Timestamp   time.Time
}

// ListCasesInput mirrors the supported list filters.
type ListCasesInput struct {
	Status       string
	BuildingID   string
	ReportedByID string
	Type         string
	Severity     string
	Category     string
	IsEscalated  *bool
	AssignedToID string
	Take         int
	Skip         int
}

// List returns filtered, paginated case summaries plus the unpaginated total.
func (s *CaseService) List(ctx context.Context, input ListCasesInput) ([]CaseSummary, int64, error) {
	filter := repository.CaseFilter{
		IsEscalated: input.IsEscalated,
		Take:        input.Take,
		Skip:        input.Skip,
	}
	if input.Status != "" {
		status, ok := domain.ParseCaseStatus(input.Status)
		if !ok {
			return nil, 0, apperrors.NewValidationError("unrecognized status", map[string]any{"status": input.Status})
		}
		filter.Status = &status
	}
	if input.BuildingID != "" {
		filter.BuildingID = &input.BuildingID
	}
	if input.ReportedByID != "" {
		filter.ReportedByID = &input.ReportedByID
	}
	if input.Type != "" {
		caseType := domain.CaseType(strings.ToUpper(input.Type))
		filter.Type = &caseType
	}
	if input.Severity != "" {
		filter.Severity = &input.Severity
	}
	if input.Category != "" {
		filter.Category = &input.Category
	}
	if input.AssignedToID != "" {
		filter.AssignedToID = &input.AssignedToID
	}

	cases, total, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}

	summaries := make([]CaseSummary, 0, len(cases))
	for i := range cases {
		assignee, err := s.currentAssignee(ctx, cases[i].ID)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, CaseSummary{Case: cases[i], AssignedTo: assignee})
	}
	return summaries, total, nil
}

// Get resolves a case by id or case number and assembles the detail view.
func (s *CaseService) Get(ctx context.Context, idOrNumber string) (*CaseDetail, error) {
	c, err := s.resolveCase(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}

	detail := &CaseDetail{Case: *c}
	refs := newUserRefCache(s.users)

	detail.ReportedBy = refs.lookup(ctx, c.ReportedByID)

	assignee, err := s.currentAssignee(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	detail.AssignedTo = assignee

	if detail.Evidence, err = s.evidence.ListEvidence(ctx, c.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	comments, err := s.evidence.ListComments(ctx, c.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail.Comments = make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		detail.Comments = append(detail.Comments, CommentView{
			ID:        comment.ID,
			Comment:   comment.Comment,
			User:      refs.lookup(ctx, comment.UserID),
			CreatedAt: comment.CreatedAt,
		})
	}

	if detail.Timeline, err = s.timelineFor(ctx, c.ID, refs); err != nil {
		return nil, err
	}
	return detail, nil
}

// Timeline returns the ordered journal for a case resolved by id or number.
func (s *CaseService) Timeline(ctx context.Context, idOrNumber string) ([]ActivityView, error) {
	c, err := s.resolveCase(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	return s.timelineFor(ctx, c.ID, newUserRefCache(s.users))
}

// CurrentAssignee exposes ledger resolution for a case; nil when the case
// has never been assigned.
func (s *CaseService) CurrentAssignee(ctx context.Context, caseID string) (*domain.UserRef, error) {
	return s.currentAssignee(ctx, caseID)
}

// AddEvidence stores a file reference against the case.
func (s *CaseService) AddEvidence(ctx context.Context, caseID, uploadedByID, fileURL, fileType string, uploaderRole *string) (*domain.EvidenceRef, error) {
	if strings.TrimSpace(fileURL) == "" {
		return nil, apperrors.NewValidationError("fileUrl is required", nil)
	}
	if fileType == "" {
		fileType = "unknown"
	}
	ref := &domain.EvidenceRef{
		ID:           uuid.NewString(),
		CaseID:       caseID,
		FileURL:      fileURL,
		FileType:     fileType,
		UploaderRole: uploaderRole,
	}
	if uploadedByID != "" {
		ref.UploadedByID = &uploadedByID
	}
	if err := s.evidence.AddEvidence(ctx, ref); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ref, nil
}

// ListEvidence returns a case's stored file references, newest first.
func (s *CaseService) ListEvidence(ctx context.Context, caseID string) ([]domain.EvidenceRef, error) {
	refs, err := s.evidence.ListEvidence(ctx, caseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return refs, nil
}

// AddComment attaches a free-text remark to the case.
func (s *CaseService) AddComment(ctx context.Context, caseID, userID, comment string) (*CommentView, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("comment is required", nil)
	}
	record := &domain.CaseComment{
		ID:      uuid.NewString(),
		CaseID:  caseID,
		UserID:  userID,
		Comment: comment,
	}
	if err := s.evidence.AddComment(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &CommentView{
		ID:        record.ID,
		Comment:   record.Comment,
		User:      newUserRefCache(s.users).lookup(ctx, userID),
		CreatedAt: record.CreatedAt,
	}, nil
}

// ListComments returns a case's comments in posting order.
func (s *CaseService) ListComments(ctx context.Context, caseID string) ([]CommentView, error) {
	comments, err := s.evidence.ListComments(ctx, caseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	refs := newUserRefCache(s.users)
	result := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		result = append(result, CommentView{
			ID:        comment.ID,
			Comment:   comment.Comment,
			User:      refs.lookup(ctx, comment.UserID),
			CreatedAt: comment.CreatedAt,
		})
	}
	return result, nil
}

// Categories lists the distinct categories in use.
func (s *CaseService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.cases.Categories(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

func (s *CaseService) timelineFor(ctx context.Context, caseID string, refs *userRefCache) ([]ActivityView, error) {
	entries, err := s.journal.ListByCase(ctx, caseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]ActivityView, 0, len(entries))
	for _, entry := range entries {
		result = append(result, ActivityView{
			ID:          entry.ID,
			OldStatus:   entry.OldStatus,
			NewStatus:   entry.NewStatus,
			Description: entry.Comments,
			User:        refs.lookup(ctx, entry.UserID),
			Timestamp:   entry.ChangedAt,
		})
	}
	return result, nil
}

func (s *CaseService) currentAssignee(ctx context.Context, caseID string) (*domain.UserRef, error) {
	latest, err := s.ledger.Latest(ctx, caseID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if latest == nil {
		return nil, nil
	}
	return newUserRefCache(s.users).lookup(ctx, latest.AssignedToID), nil
}

// userRefCache memoizes directory lookups while a read model is assembled.
// Unresolvable users degrade to an id-only ref rather than failing the read.
type userRefCache struct {
	users repository.UserStore
	seen  map[string]*domain.UserRef
}

func newUserRefCache(users repository.UserStore) *userRefCache {
	return &userRefCache{users: users, seen: make(map[string]*domain.UserRef)}
}

func (c *userRefCache) lookup(ctx context.Context, userID string) *domain.UserRef {
	if userID == "" {
		return nil
	}
	if ref, ok := c.seen[userID]; ok {
		return ref
	}
	ref := &domain.UserRef{ID: userID}
	if user, err := c.users.GetByID(ctx, userID); err == nil {
		r := user.Ref()
		ref = &r
	}
	c.seen[userID] = ref
	return ref
}
