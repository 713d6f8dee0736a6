package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/service"
)

// SLAHandler serves the SLA dashboard views.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// ListTracking GET /sla/tracking.
func (h *SLAHandler) ListTracking(c *fiber.Ctx) error {
	views, err := h.service.ListTracking(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SlaTrackingResponse, 0, len(views))
	for i := range views {
		items = append(items, slaTrackingResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func slaTrackingResponse(view *service.SlaView) dto.SlaTrackingResponse {
	return dto.SlaTrackingResponse{
		ID:                   view.ID,
		CaseID:               view.CaseID,
		CaseNumber:           view.CaseNumber,
		Category:             view.Category,
		Severity:             view.Severity,
		Status:               string(view.Status),
		IsEscalated:          view.IsEscalated,
		AssignedTo:           userRefResponse(view.AssignedTo),
		ResponseDueAt:        view.ResponseDueAt,
		ResolutionDueAt:      view.ResolutionDueAt,
		ResponseBreached:     view.ResponseBreached,
		ResolutionBreached:   view.ResolutionBreached,
		ResponseHoursLeft:    view.ResponseHoursLeft,
		ResolutionHoursLeft:  view.ResolutionHoursLeft,
		TotalResolutionHours: view.TotalResolutionHours,
		Progress:             view.Progress,
		SlaStatus:            string(view.SlaStatus),
	}
}
