package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ReportsHandler serves the admin dashboard aggregates.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// TicketsByCategory GET /reports/categories.
func (h *ReportsHandler) TicketsByCategory(c *fiber.Ctx) error {
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	shares, err := h.service.TicketsByCategory(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shares})
}

// StatusBreakdown GET /reports/statuses.
func (h *ReportsHandler) StatusBreakdown(c *fiber.Ctx) error {
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	summary, err := h.service.StatusBreakdown(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// StaffWorkload GET /reports/staff.
func (h *ReportsHandler) StaffWorkload(c *fiber.Ctx) error {
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	loads, err := h.service.StaffWorkload(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": loads})
}

// reportFilter reads the optional department/from/to query parameters
// shared by every report endpoint.
func reportFilter(c *fiber.Ctx) (service.ReportFilter, error) {
	filter := service.ReportFilter{Department: c.Query("department")}

	from, err := queryTime(c, "from")
	if err != nil {
		return filter, err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return filter, err
	}
	filter.From = from
	filter.To = to
	return filter, nil
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts, nil
	}
	return nil, apperrors.NewValidationError("invalid "+name+" timestamp", map[string]any{name: raw})
}
