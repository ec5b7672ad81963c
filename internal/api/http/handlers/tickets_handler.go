package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages the ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.UserID,
		Email:       req.Email,
	}
	if input.OwnerID == "" {
		if principal, ok := auth.PrincipalFromContext(c); ok && principal.Role == domain.RoleClient {
			input.OwnerID = principal.User.ID
		}
	}

	ticket, err := h.service.Create(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": service.Normalize(ticket, nil)})
}

// ListTickets GET /tickets. The view query narrows the board to
// unassigned or assigned tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	view := service.TicketListView{}
	switch c.Query("view") {
	case "unassigned":
		view.Unassigned = true
	case "assigned":
		view.Assigned = true
	}
	tickets, err := h.service.List(c.Context(), view)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tickets})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// ListUserTickets GET /tickets/user/:userId.
func (h *TicketsHandler) ListUserTickets(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.Context(), service.TicketListView{OwnerID: c.Params("userId")})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tickets})
}

// ListStaffTickets GET /tickets/staff/:staffId.
func (h *TicketsHandler) ListStaffTickets(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.Context(), service.TicketListView{StaffID: c.Params("staffId")})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tickets})
}

// UpdateCategory PUT /tickets/:id/category.
func (h *TicketsHandler) UpdateCategory(c *fiber.Ctx) error {
	var req dto.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.service.UpdateCategory(c.Context(), c.Params("id"), req.Category, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(assignmentResponse(result))
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.TicketPatch{Category: req.Category}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		patch.Priority = &priority
	}

	result, err := h.service.Update(c.Context(), c.Params("id"), patch, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(assignmentResponse(result))
}

// ListAudits GET /tickets/:id/audits.
func (h *TicketsHandler) ListAudits(c *fiber.Ctx) error {
	audits, err := h.service.ListAudits(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AuditResponse, 0, len(audits))
	for i := range audits {
		items = append(items, dto.NewAuditResponse(&audits[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Ticket deleted"})
}

func assignmentResponse(result *service.TicketUpdateResult) fiber.Map {
	response := fiber.Map{
		"data":     result.Ticket,
		"assigned": result.Assigned,
	}
	if result.Message != "" {
		response["message"] = result.Message
	}
	if result.Staff != nil {
		response["staff"] = fiber.Map{
			"id":         result.Staff.ID,
			"name":       result.Staff.Name,
			"department": result.Staff.Department,
		}
	}
	return response
}

func actorID(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.User.ID
	}
	return ""
}
