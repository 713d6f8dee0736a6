package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// CasesHandler manages incident case endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// CreateCase POST /incidents.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.CreateCaseInput{
		ID:               req.ID,
		CaseNumber:       req.CaseNumber,
		Type:             req.Type,
		Category:         req.Category,
		Severity:         req.Severity,
		Description:      req.Description,
		BuildingID:       req.BuildingID,
		OccurredAt:       req.OccurredAt,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		ImmediateActions: req.ImmediateActions,
		PeopleImpacted:   req.PeopleImpacted,
	}
	created, err := h.service.Create(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": caseSummaryResponse(created, nil)})
}

// ListCases GET /incidents.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	input := parseListQuery(c)
	summaries, total, err := h.service.List(c.Context(), input)
	if err != nil {
		return err
	}
	items := make([]dto.CaseSummaryResponse, 0, len(summaries))
	for i := range summaries {
		items = append(items, caseSummaryResponse(&summaries[i].Case, summaries[i].AssignedTo))
	}
	return c.JSON(dto.CaseListResponse{Data: items, Total: total})
}

// GetCase GET /incidents/:id. Accepts a case UUID or a case number.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseDetailResponse(detail)})
}

// AssignCase PATCH /incidents/:id/assign.
func (h *CasesHandler) AssignCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.service.Assign(c.Context(), c.Params("id"), req.AssignedToID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummaryResponse(updated, nil)})
}

// UpdateStatus PATCH /incidents/:id/status.
func (h *CasesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.service.UpdateStatus(c.Context(), c.Params("id"), req.Status, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummaryResponse(updated, nil)})
}

// EscalateCase PATCH /incidents/:id/escalate.
func (h *CasesHandler) EscalateCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EscalateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.service.Escalate(c.Context(), c.Params("id"), principal.User.ID, req.AssignedToID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummaryResponse(updated, nil)})
}

// CloseCase PATCH /incidents/:id/close.
func (h *CasesHandler) CloseCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	updated, err := h.service.Close(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummaryResponse(updated, nil)})
}

// DeleteCase DELETE /incidents/:id.
func (h *CasesHandler) DeleteCase(c *fiber.Ctx) error {
	deleted, err := h.service.SoftDelete(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummaryResponse(deleted, nil)})
}

// Timeline GET /incidents/:id/timeline.
func (h *CasesHandler) Timeline(c *fiber.Ctx) error {
	entries, err := h.service.Timeline(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(entries))
	for i := range entries {
		items = append(items, activityResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CurrentAssignee GET /incidents/:id/assignee.
func (h *CasesHandler) CurrentAssignee(c *fiber.Ctx) error {
	ref, err := h.service.CurrentAssignee(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userRefResponse(ref)})
}

// AddEvidence POST /incidents/:id/evidence.
func (h *CasesHandler) AddEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddEvidenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ref, err := h.service.AddEvidence(c.Context(), c.Params("id"), principal.User.ID, req.FileURL, req.FileType, req.UploaderRole)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": evidenceResponse(ref)})
}

// ListEvidence GET /incidents/:id/evidence.
func (h *CasesHandler) ListEvidence(c *fiber.Ctx) error {
	refs, err := h.service.ListEvidence(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EvidenceResponse, 0, len(refs))
	for i := range refs {
		items = append(items, evidenceResponse(&refs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /incidents/:id/comments.
func (h *CasesHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.AddComment(c.Context(), c.Params("id"), principal.User.ID, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(view)})
}

// ListComments GET /incidents/:id/comments.
func (h *CasesHandler) ListComments(c *fiber.Ctx) error {
	views, err := h.service.ListComments(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(views))
	for i := range views {
		items = append(items, commentResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Categories GET /incidents/categories.
func (h *CasesHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

func parseListQuery(c *fiber.Ctx) service.ListCasesInput {
	input := service.ListCasesInput{
		Status:       c.Query("status"),
		BuildingID:   c.Query("building_id"),
		ReportedByID: c.Query("reported_by_id"),
		Type:         c.Query("type"),
		Severity:     c.Query("severity"),
		Category:     c.Query("category"),
		AssignedToID: c.Query("assigned_to_id"),
		Take:         parseInt(c.Query("take"), 0),
		Skip:         parseInt(c.Query("skip"), 0),
	}
	if raw := c.Query("is_escalated"); raw != "" {
		escalated := strings.EqualFold(raw, "true")
		input.IsEscalated = &escalated
	}
	return input
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func userRefResponse(ref *domain.UserRef) *dto.UserRefResponse {
	if ref == nil {
		return nil
	}
	return &dto.UserRefResponse{ID: ref.ID, Name: ref.Name, Email: ref.Email}
}

func caseSummaryResponse(c *domain.Case, assignedTo *domain.UserRef) dto.CaseSummaryResponse {
	return dto.CaseSummaryResponse{
		ID:             c.ID,
		CaseNumber:     c.CaseNumber,
		Type:           c.Type,
		Category:       c.Category,
		Severity:       c.Severity,
		Status:         c.Status,
		Description:    c.Description,
		IsEscalated:    c.IsEscalated,
		BuildingID:     c.BuildingID,
		ReportedByID:   c.ReportedByID,
		AssignedTo:     userRefResponse(assignedTo),
		OccurredAt:     c.OccurredAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		PeopleImpacted: c.PeopleImpacted,
	}
}

func caseDetailResponse(detail *service.CaseDetail) dto.CaseDetailResponse {
	evidence := make([]dto.EvidenceResponse, 0, len(detail.Evidence))
	for i := range detail.Evidence {
		evidence = append(evidence, evidenceResponse(&detail.Evidence[i]))
	}
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, commentResponse(&detail.Comments[i]))
	}
	timeline := make([]dto.ActivityResponse, 0, len(detail.Timeline))
	for i := range detail.Timeline {
		timeline = append(timeline, activityResponse(&detail.Timeline[i]))
	}

	return dto.CaseDetailResponse{
		CaseSummaryResponse: caseSummaryResponse(&detail.Case, detail.AssignedTo),
		Location:            detail.Case.Location,
		Latitude:            detail.Case.Latitude,
		Longitude:           detail.Case.Longitude,
		ImmediateActions:    detail.Case.ImmediateActions,
		EscalatedAt:         detail.Case.EscalatedAt,
		EscalationReason:    detail.Case.EscalationReason,
		ReportedBy:          userRefResponse(detail.ReportedBy),
		Evidence:            evidence,
		Comments:            comments,
		Timeline:            timeline,
	}
}

func evidenceResponse(ref *domain.EvidenceRef) dto.EvidenceResponse {
	return dto.EvidenceResponse{
		ID:           ref.ID,
		FileURL:      ref.FileURL,
		FileType:     ref.FileType,
		UploaderRole: ref.UploaderRole,
		UploadedByID: ref.UploadedByID,
		UploadedAt:   ref.UploadedAt,
	}
}

func commentResponse(view *service.CommentView) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        view.ID,
		Comment:   view.Comment,
		User:      userRefResponse(view.User),
		CreatedAt: view.CreatedAt,
	}
}

func activityResponse(entry *service.ActivityView) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:          entry.ID,
		OldStatus:   entry.OldStatus,
		NewStatus:   entry.NewStatus,
		Description: entry.Description,
		User:        userRefResponse(entry.User),
		Timestamp:   entry.Timestamp,
	}
}
