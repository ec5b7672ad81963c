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

// TicketService coordinates the ticket lifecycle: creation, category
// driven assignment, direct status/priority updates, and deletion.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	users      repository.UserRepository
	audits     repository.AuditRepository
	assignment *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	UserRepo    repository.UserRepository
	AuditRepo   repository.AuditRepository
	Assignment  *AssignmentService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		audits:     deps.AuditRepo,
		assignment: deps.Assignment,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// TicketCreateInput describes ticket creation payload. OwnerID wins
// when both it and Email are supplied; Email is resolved with a
// case-insensitive lookup.
type TicketCreateInput struct {
	Title       string
	Description string
	OwnerID     string
	Email       string
}

// TicketPatch carries a partial update; nil fields are left untouched.
// A non-nil Category, including an empty one, re-runs assignment.
type TicketPatch struct {
	Category *string
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
}

// TicketUpdateResult pairs the updated view with the assignment outcome.
type TicketUpdateResult struct {
	Ticket   NormalizedTicket
	Assigned bool
	Staff    *domain.StaffRef
	Message  string
}

// NormalizedTicket is the externally visible ticket shape.
type NormalizedTicket struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	OwnerID            string                `json:"userId"`
	Status             domain.TicketStatus   `json:"status"`
	Priority           domain.TicketPriority `json:"priority"`
	Category           string                `json:"category"`
	Date               *time.Time            `json:"date"`
	AssignedStaffID    string                `json:"assignedStaffId"`
	AssignedStaffName  string                `json:"assignedStaffName"`
	AssignedDepartment string                `json:"assignedDepartment"`
	HasAgentReply      bool                  `json:"hasAgentReply"`
	HasClientViewed    bool                  `json:"hasClientViewed"`
}

// TicketExtras overrides stored reply flags in the normalized view
// without persisting; callers computing "has staff replied" from the
// message history use it.
type TicketExtras struct {
	HasAgentReply   *bool
	HasClientViewed *bool
}

// Normalize merges the stored ticket with caller overrides.
func Normalize(ticket *domain.Ticket, extras *TicketExtras) NormalizedTicket {
	view := NormalizedTicket{
		ID:                 ticket.ID,
		Title:              ticket.Title,
		Description:        ticket.Description,
		OwnerID:            ticket.OwnerID,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		Category:           ticket.Category,
		AssignedStaffID:    ticket.AssignedStaffID,
		AssignedStaffName:  ticket.AssignedStaffName,
		AssignedDepartment: ticket.AssignedDepartment,
		HasAgentReply:      ticket.HasAgentReply,
		HasClientViewed:    ticket.HasClientViewed,
	}
	if !ticket.CreatedAt.IsZero() {
		created := ticket.CreatedAt
		view.Date = &created
	}
	if extras != nil {
		if extras.HasAgentReply != nil {
			view.HasAgentReply = *extras.HasAgentReply
		}
		if extras.HasClientViewed != nil {
			view.HasClientViewed = *extras.HasClientViewed
		}
	}
	return view
}

// Create persists a Pending ticket with no category or assignment and
// fans out new-ticket notifications to admins (best-effort).
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	ownerID := input.OwnerID
	if ownerID == "" && input.Email != "" {
		owner, err := s.users.GetByEmail(ctx, input.Email)
		if err == nil {
			ownerID = owner.ID
		} else if !apperrors.IsNotFound(apperrors.MapError(err)) {
			return nil, apperrors.MapError(err)
		}
	}
	if ownerID == "" {
		return nil, apperrors.NewValidationError("userId is required", nil)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
		Status:      domain.TicketStatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID), zap.String("owner_id", ownerID))

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{ID: ownerID, Role: domain.RoleClient},
		Payload: events.TicketCreatedPayload{
			Title:   ticket.Title,
			OwnerID: ownerID,
		},
	})
	return ticket, nil
}

// Get fetches a single ticket view.
func (s *TicketService) Get(ctx context.Context, ticketID string) (NormalizedTicket, error) {
	ticket, err := s.fetch(ctx, ticketID)
	if err != nil {
		return NormalizedTicket{}, err
	}
	return Normalize(ticket, nil), nil
}

// TicketListView selects which slice of the board a listing returns.
type TicketListView struct {
	Unassigned bool
	Assigned   bool
	OwnerID    string
	StaffID    string
}

// List returns normalized tickets for the requested view, newest first.
// Each row's hasAgentReply is recomputed from the message history: any
// message from someone other than the viewing party counts as a reply.
func (s *TicketService) List(ctx context.Context, view TicketListView) ([]NormalizedTicket, error) {
	filter := repository.TicketFilter{
		Unassigned:   view.Unassigned,
		AssignedOnly: view.Assigned,
	}
	perspective := ""
	if view.OwnerID != "" {
		filter.OwnerID = &view.OwnerID
		perspective = view.OwnerID
	}
	if view.StaffID != "" {
		filter.AssignedStaffID = &view.StaffID
		perspective = view.StaffID
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]NormalizedTicket, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		other := perspective
		if other == "" {
			other = ticket.OwnerID
		}
		hasReply, err := s.hasReplyFromOther(ctx, ticket.ID, other)
		if err != nil {
			return nil, err
		}
		result = append(result, Normalize(ticket, &TicketExtras{HasAgentReply: &hasReply}))
	}
	return result, nil
}

// UpdateCategory routes the ticket through the assignment engine.
func (s *TicketService) UpdateCategory(ctx context.Context, ticketID, category, actorID string) (*TicketUpdateResult, error) {
	if strings.TrimSpace(category) == "" {
		return nil, apperrors.NewValidationError("category is required", nil)
	}
	ticket, err := s.fetch(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.assignment.AssignTicket(ctx, ticket, category, actorID)
	if err != nil {
		return nil, err
	}
	return &TicketUpdateResult{
		Ticket:   Normalize(ticket, nil),
		Assigned: outcome.Assigned,
		Staff:    outcome.Staff,
		Message:  outcome.Message,
	}, nil
}

// Update applies a partial edit. Status and priority are written as
// given; a present category re-runs assignment, an absent one leaves
// the assignment fields untouched.
func (s *TicketService) Update(ctx context.Context, ticketID string, patch TicketPatch, actorID string) (*TicketUpdateResult, error) {
	ticket, err := s.fetch(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	oldPriority := ticket.Priority
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}

	result := &TicketUpdateResult{}
	if patch.Category != nil {
		outcome, err := s.assignment.AssignTicket(ctx, ticket, *patch.Category, actorID)
		if err != nil {
			return nil, err
		}
		result.Assigned = outcome.Assigned
		result.Staff = outcome.Staff
		result.Message = outcome.Message
	} else {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	if patch.Status != nil && oldStatus != ticket.Status {
		if err := s.recordStatusChange(ctx, ticket, actorID, oldStatus); err != nil {
			return nil, err
		}
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    events.Actor{ID: actorID, Role: domain.RoleStaff},
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if patch.Priority != nil && oldPriority != ticket.Priority {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticket.ID,
			Actor:    events.Actor{ID: actorID, Role: domain.RoleStaff},
			Payload: events.TicketPriorityChangedPayload{
				OldPriority: oldPriority,
				NewPriority: ticket.Priority,
			},
		})
	}

	result.Ticket = Normalize(ticket, nil)
	return result, nil
}

// Delete removes the ticket and cascades its messages. Notifications
// referencing the ticket are intentionally retained; recipients can
// still read and dismiss them.
func (s *TicketService) Delete(ctx context.Context, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if err := s.messages.DeleteByTicket(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListAudits returns the ticket's change history, newest first.
func (s *TicketService) ListAudits(ctx context.Context, ticketID string) ([]domain.TicketAudit, error) {
	if _, err := s.fetch(ctx, ticketID); err != nil {
		return nil, err
	}
	audits, err := s.audits.ListByTicket(ctx, ticketID, 0, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return audits, nil
}

func (s *TicketService) fetch(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) hasReplyFromOther(ctx context.Context, ticketID, selfID string) (bool, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	for _, msg := range msgs {
		if msg.SenderID != selfID {
			return true, nil
		}
	}
	return false, nil
}

// The audit trail is primary state; a failed write fails the update.
func (s *TicketService) recordStatusChange(ctx context.Context, ticket *domain.Ticket, actorID string, oldStatus domain.TicketStatus) error {
	if s.audits == nil {
		return nil
	}
	if err := s.audits.Create(ctx, &domain.TicketAudit{
		TicketID:      ticket.ID,
		ChangedByID:   actorID,
		ChangedByRole: domain.RoleStaff,
		FromStatus:    oldStatus,
		ToStatus:      ticket.Status,
		Note:          "status_update",
	}); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
