package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// TicketPriority enumerates urgency. Empty means unset.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Ticket is the aggregate for support requests. Category doubles as the
// routing department; an empty category means the ticket is unassigned
// and still Pending. AssignedStaffName and AssignedDepartment are a
// denormalized cache of the staff record, refreshed only at assignment
// time (no live propagation when the staff record later changes).
type Ticket struct {
	ID                 string
	Title              string
	Description        string
	OwnerID            string
	Status             TicketStatus
	Priority           TicketPriority
	Category           string
	AssignedStaffID    string
	AssignedStaffName  string
	AssignedDepartment string
	HasAgentReply      bool
	HasClientViewed    bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Assigned reports whether the ticket is bound to a staff member.
func (t *Ticket) Assigned() bool {
	return t.AssignedStaffID != ""
}
