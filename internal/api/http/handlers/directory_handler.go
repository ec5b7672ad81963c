package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// DirectoryHandler serves the admin staff and client listings.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// ListStaff GET /staff.
func (h *DirectoryHandler) ListStaff(c *fiber.Ctx) error {
	summaries, err := h.service.StaffSummaries(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": directoryEntries(summaries)})
}

// ListClients GET /clients.
func (h *DirectoryHandler) ListClients(c *fiber.Ctx) error {
	summaries, err := h.service.ClientSummaries(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": directoryEntries(summaries)})
}

func directoryEntries(summaries []service.AccountSummary) []dto.DirectoryEntry {
	entries := make([]dto.DirectoryEntry, 0, len(summaries))
	for _, summary := range summaries {
		entries = append(entries, dto.DirectoryEntry{
			ID:         summary.ID,
			Name:       summary.Name,
			Email:      summary.Email,
			Department: summary.Department,
			Number:     summary.Number,
			City:       summary.City,
			Province:   summary.Province,
			CreatedAt:  summary.CreatedAt,
			Tickets:    summary.Tickets,
		})
	}
	return entries
}
