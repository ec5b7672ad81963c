package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationService creates and serves per-staff advisory records.
// Creation is fire-and-forget relative to the ticket or message write
// that triggered it: a failed insert is logged and swallowed so a
// notification outage can never block ticket creation, assignment, or
// messaging.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	cache         *redis.Client
	logger        *zap.Logger
	metrics       *observability.Metrics
	cfg           config.NotificationConfig
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Cache            *redis.Client
	Logger           *zap.Logger
	Metrics          *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		cache:         deps.Cache,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes the notification triggers to ticket events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleTicketMessageAdded)
}

// Notify inserts one notification record. On persistence failure it
// logs and returns nil; the error never propagates.
func (n *NotificationService) Notify(ctx context.Context, staffID string, typ domain.NotificationType, title, body, ticketID, messageID string) *domain.Notification {
	if staffID == "" {
		return nil
	}
	notif := &domain.Notification{
		StaffID:   staffID,
		Type:      typ,
		Title:     title,
		Message:   body,
		TicketID:  ticketID,
		MessageID: messageID,
	}
	if err := n.notifications.Create(ctx, notif); err != nil {
		n.logger.Error("failed to create notification",
			zap.String("staff_id", staffID),
			zap.String("type", string(typ)),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		n.metrics.RecordNotificationDrop()
		return nil
	}
	n.invalidateUnread(ctx, staffID)
	return notif
}

// NotificationPage is the paginated staff inbox view.
type NotificationPage struct {
	Items       []domain.Notification
	Total       int
	UnreadCount int
	Limit       int
	Offset      int
}

// ListForStaff returns a page of notifications plus the staff member's
// unread count.
func (n *NotificationService) ListForStaff(ctx context.Context, staffID string, unreadOnly bool, limit, offset int) (*NotificationPage, error) {
	if staffID == "" {
		return nil, apperrors.NewValidationError("staffId is required", nil)
	}
	if limit <= 0 {
		limit = n.cfg.DefaultPageSize
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filter := repository.NotificationFilter{StaffID: staffID, UnreadOnly: unreadOnly, Limit: limit, Offset: offset}
	items, err := n.notifications.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := n.notifications.Count(ctx, repository.NotificationFilter{StaffID: staffID, UnreadOnly: unreadOnly})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	unread, err := n.UnreadCount(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{Items: items, Total: total, UnreadCount: unread, Limit: limit, Offset: offset}, nil
}

// ListNewSince returns notifications created after the watermark, for
// incremental client polling.
func (n *NotificationService) ListNewSince(ctx context.Context, staffID string, since *time.Time) ([]domain.Notification, int, error) {
	if staffID == "" {
		return nil, 0, apperrors.NewValidationError("staffId is required", nil)
	}
	items, err := n.notifications.List(ctx, repository.NotificationFilter{StaffID: staffID, Since: since})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	unread, err := n.UnreadCount(ctx, staffID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// UnreadCount returns the number of unread notifications for a staff
// member, served from the Redis cache when warm.
func (n *NotificationService) UnreadCount(ctx context.Context, staffID string) (int, error) {
	key := unreadCacheKey(staffID)
	if n.cache != nil {
		if cached, err := n.cache.Get(ctx, key).Result(); err == nil {
			if count, convErr := strconv.Atoi(cached); convErr == nil {
				return count, nil
			}
		}
	}

	count, err := n.notifications.Count(ctx, repository.NotificationFilter{StaffID: staffID, UnreadOnly: true})
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if n.cache != nil {
		if err := n.cache.Set(ctx, key, strconv.Itoa(count), n.cfg.UnreadCacheTTL()).Err(); err != nil {
			n.logger.Warn("unread count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead marks a single notification read.
func (n *NotificationService) MarkRead(ctx context.Context, id string) error {
	notif, err := n.notifications.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": id})
	}
	if err := n.notifications.MarkRead(ctx, id); err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": id})
	}
	n.invalidateUnread(ctx, notif.StaffID)
	return nil
}

// MarkAllReadForStaff marks every unread notification of the staff read.
func (n *NotificationService) MarkAllReadForStaff(ctx context.Context, staffID string) error {
	if staffID == "" {
		return apperrors.NewValidationError("staffId is required", nil)
	}
	if err := n.notifications.MarkAllReadForStaff(ctx, staffID); err != nil {
		return apperrors.MapError(err)
	}
	n.invalidateUnread(ctx, staffID)
	return nil
}

// MarkReadForTicket marks every unread notification referencing the
// ticket as read. The coupled ticket flag reset lives with the
// messaging channel, which owns the "client opened the thread" flow.
func (n *NotificationService) MarkReadForTicket(ctx context.Context, ticketID string) error {
	if ticketID == "" {
		return apperrors.NewValidationError("ticketId is required", nil)
	}
	staffIDs, err := n.notifications.MarkReadForTicket(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	for _, staffID := range staffIDs {
		n.invalidateUnread(ctx, staffID)
	}
	return nil
}

// Delete removes a single notification.
func (n *NotificationService) Delete(ctx context.Context, id string) error {
	notif, err := n.notifications.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": id})
	}
	if err := n.notifications.Delete(ctx, id); err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": id})
	}
	n.invalidateUnread(ctx, notif.StaffID)
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		n.logger.Error("admin lookup for ticket notification failed", zap.Error(err))
		return nil
	}
	for _, admin := range admins {
		n.Notify(ctx, admin.ID, domain.NotificationNewTicket,
			"New Ticket Submitted",
			fmt.Sprintf("%q submitted by client", payload.Title),
			event.TicketID, "")
	}
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	title := payload.TicketTitle
	if title == "" {
		title = "New ticket"
	}
	n.Notify(ctx, payload.StaffID, domain.NotificationTicketAssigned,
		"New Ticket Assigned",
		fmt.Sprintf("%s assigned to you", title),
		event.TicketID, "")
	return nil
}

func (n *NotificationService) handleTicketMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageAddedPayload)
	if !ok {
		return nil
	}
	// staff already know about their own replies; only client messages
	// on an assigned ticket produce a notification
	if !payload.SenderIsClient || payload.AssignedStaffID == "" {
		return nil
	}
	sender := payload.SenderName
	if sender == "" {
		sender = "Client"
	}
	title := payload.TicketTitle
	if title == "" {
		title = "ticket"
	}
	n.Notify(ctx, payload.AssignedStaffID, domain.NotificationNewMessage,
		"New Reply",
		fmt.Sprintf("%s replied to %s", sender, title),
		event.TicketID, payload.MessageID)
	return nil
}

func (n *NotificationService) invalidateUnread(ctx context.Context, staffID string) {
	if n.cache == nil || staffID == "" {
		return
	}
	if err := n.cache.Del(ctx, unreadCacheKey(staffID)).Err(); err != nil {
		n.logger.Warn("unread count cache invalidation failed",
			zap.String("staff_id", staffID), zap.Error(err))
	}
}

func unreadCacheKey(staffID string) string {
	return "notifications:unread:" + staffID
}

func notFoundOr(err error, resource string, details map[string]any) error {
	if apperrors.ToDomainError(err).Code == "NOT_FOUND" {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}
