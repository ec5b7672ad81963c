package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// MessageService handles the per-ticket conversation thread and the
// read-state bookkeeping that hangs off it.
type MessageService struct {
	messages      repository.MessageRepository
	tickets       repository.TicketRepository
	notifications *NotificationService
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	MessageRepo   repository.MessageRepository
	TicketRepo    repository.TicketRepository
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:      deps.MessageRepo,
		tickets:       deps.TicketRepo,
		notifications: deps.Notifications,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// MessageInput is a single thread entry to append.
type MessageInput struct {
	SenderID    string
	SenderName  string
	Body        string
	Attachments []domain.Attachment
}

// PostMessage appends a message to the ticket's thread. A message from
// the assigned staff flips the ticket to agent-replied / not-viewed;
// a client message on an assigned ticket notifies the assignee.
func (s *MessageService) PostMessage(ctx context.Context, ticketID string, input MessageInput) (*domain.Message, error) {
	if input.SenderID == "" || strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.NewValidationError("senderId and message are required", nil)
	}

	senderName := input.SenderName
	if senderName == "" {
		senderName = "User"
	}
	message := &domain.Message{
		TicketID:    ticketID,
		SenderID:    input.SenderID,
		SenderName:  senderName,
		Body:        input.Body,
		Attachments: input.Attachments,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		// The thread entry stands on its own; a missing ticket just
		// means there is no read state or assignee to update.
		s.logger.Warn("message posted for unknown ticket",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return message, nil
	}

	senderIsStaff := ticket.Assigned() && input.SenderID == ticket.AssignedStaffID
	if senderIsStaff {
		ticket.HasAgentReply = true
		ticket.HasClientViewed = false
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	// Sender identity is pure id equality with the ticket owner; an
	// admin or another staff member posting is neither client nor
	// assignee and triggers nothing.
	senderIsClient := input.SenderID == ticket.OwnerID
	s.publishMessageAdded(ctx, ticket, message, senderIsClient)
	return message, nil
}

// ListMessages returns the ticket's thread in chronological order.
func (s *MessageService) ListMessages(ctx context.Context, ticketID string) ([]domain.Message, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// MarkTicketNotificationsRead marks every notification for the ticket
// as read and records that the client has seen the latest agent reply.
func (s *MessageService) MarkTicketNotificationsRead(ctx context.Context, ticketID string) error {
	if ticketID == "" {
		return apperrors.NewValidationError("ticketId is required", nil)
	}
	if err := s.notifications.MarkReadForTicket(ctx, ticketID); err != nil {
		return err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(apperrors.MapError(err)) {
			return nil
		}
		return apperrors.MapError(err)
	}
	ticket.HasClientViewed = true
	ticket.HasAgentReply = false
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *MessageService) publishMessageAdded(ctx context.Context, ticket *domain.Ticket, message *domain.Message, senderIsClient bool) {
	if s.dispatcher == nil {
		return
	}
	role := domain.RoleClient
	if !senderIsClient {
		role = domain.RoleStaff
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketMessageAdded,
		TicketID:  ticket.ID,
		Actor:     events.Actor{ID: message.SenderID, Role: role},
		Timestamp: time.Now(),
		Payload: events.TicketMessageAddedPayload{
			MessageID:       message.ID,
			SenderID:        message.SenderID,
			SenderName:      message.SenderName,
			SenderIsClient:  senderIsClient,
			AssignedStaffID: ticket.AssignedStaffID,
			TicketTitle:     ticket.Title,
		},
	})
}
