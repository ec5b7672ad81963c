package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketMessageAdded    EventType = "ticket_message_added"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
)

// Actor describes who caused an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries what the admin fan-out needs.
type TicketCreatedPayload struct {
	Title   string `json:"title"`
	OwnerID string `json:"owner_id"`
}

// TicketAssignedPayload is emitted only on successful assignment.
type TicketAssignedPayload struct {
	StaffID     string `json:"staff_id"`
	StaffName   string `json:"staff_name"`
	Department  string `json:"department"`
	TicketTitle string `json:"ticket_title"`
}

// TicketMessageAddedPayload describes a new thread message. The
// assignment snapshot is taken when the message is posted so handlers
// do not re-read the ticket.
type TicketMessageAddedPayload struct {
	MessageID       string `json:"message_id"`
	SenderID        string `json:"sender_id"`
	SenderName      string `json:"sender_name"`
	SenderIsClient  bool   `json:"sender_is_client"`
	AssignedStaffID string `json:"assigned_staff_id"`
	TicketTitle     string `json:"ticket_title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}
