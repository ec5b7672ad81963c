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

// MessagesHandler manages the per-ticket conversation endpoints.
type MessagesHandler struct {
	service *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{service: messageService}
}

// PostMessage POST /tickets/:id/messages.
func (h *MessagesHandler) PostMessage(c *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.MessageInput{
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		Body:       req.Message,
	}
	if input.SenderID == "" {
		if principal, ok := auth.PrincipalFromContext(c); ok {
			input.SenderID = principal.User.ID
			input.SenderName = principal.User.Name
		}
	}
	for _, att := range req.Attachments {
		input.Attachments = append(input.Attachments, domain.Attachment{
			FileName:  att.FileName,
			SizeBytes: att.SizeBytes,
			MimeType:  att.MimeType,
			FilePath:  att.FilePath,
		})
	}

	message, err := h.service.PostMessage(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(message)})
}

// ListMessages GET /tickets/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	messages, err := h.service.ListMessages(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, dto.NewMessageResponse(&messages[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkTicketRead PUT /tickets/:id/notifications/read. Marks every
// notification for the ticket read and flags the thread as viewed.
func (h *MessagesHandler) MarkTicketRead(c *fiber.Ctx) error {
	if err := h.service.MarkTicketNotificationsRead(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notifications marked as read"})
}
