package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/service"
)

// OHSHandler serves hazard-focused read views.
type OHSHandler struct {
	service *service.OHSService
}

// NewOHSHandler constructs handler.
func NewOHSHandler(ohsService *service.OHSService) *OHSHandler {
	return &OHSHandler{service: ohsService}
}

// ListHazards GET /ohs/hazards.
func (h *OHSHandler) ListHazards(c *fiber.Ctx) error {
	hazards, total, err := h.service.ListHazards(c.Context(), parseInt(c.Query("take"), 0), parseInt(c.Query("skip"), 0))
	if err != nil {
		return err
	}
	items := make([]dto.CaseSummaryResponse, 0, len(hazards))
	for i := range hazards {
		items = append(items, caseSummaryResponse(&hazards[i], nil))
	}
	return c.JSON(dto.CaseListResponse{Data: items, Total: total})
}

// Stats GET /ohs/stats.
func (h *OHSHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OHSStatsResponse{
		Total:  stats.Total,
		Open:   stats.Open,
		Closed: stats.Closed,
	}})
}
