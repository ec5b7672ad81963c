package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// NotificationsHandler serves the staff notification inbox.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// ListForStaff GET /notifications/staff/:staffId.
func (h *NotificationsHandler) ListForStaff(c *fiber.Ctx) error {
	unreadOnly := c.Query("unread") == "true"
	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	page, err := h.service.ListForStaff(c.Context(), c.Params("staffId"), unreadOnly, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewNotificationResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data":        items,
		"total":       page.Total,
		"unreadCount": page.UnreadCount,
		"limit":       page.Limit,
		"offset":      page.Offset,
	})
}

// Poll GET /notifications/staff/:staffId/new. Returns notifications
// created after the "since" watermark plus the current unread count.
func (h *NotificationsHandler) Poll(c *fiber.Ctx) error {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			since = &parsed
		}
	}

	items, unread, err := h.service.ListNewSince(c.Context(), c.Params("staffId"), since)
	if err != nil {
		return err
	}
	responses := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		responses = append(responses, dto.NewNotificationResponse(&items[i]))
	}
	return c.JSON(fiber.Map{
		"data":        responses,
		"unreadCount": unread,
		"serverTime":  time.Now().UTC().Format(time.RFC3339),
	})
}

// MarkRead PUT /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkRead(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllRead PUT /notifications/staff/:staffId/read.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllReadForStaff(c.Context(), c.Params("staffId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

// Delete DELETE /notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
