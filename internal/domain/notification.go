package domain

import "time"

// NotificationType enumerates the events a staff member is told about.
type NotificationType string

const (
	NotificationNewTicket       NotificationType = "new_ticket"
	NotificationTicketAssigned  NotificationType = "ticket_assigned"
	NotificationNewMessage      NotificationType = "new_message"
	NotificationStatusChanged   NotificationType = "status_changed"
	NotificationPriorityChanged NotificationType = "priority_changed"
)

// Notification is an advisory record for a single staff recipient.
// Delivery is best-effort record insertion; it references a ticket and
// optionally a message but owns neither.
type Notification struct {
	ID        string
	StaffID   string
	Type      NotificationType
	Title     string
	Message   string
	TicketID  string
	MessageID string
	Read      bool
	CreatedAt time.Time
	ReadAt    *time.Time
}
