package domain

import "time"

// TicketAudit is an immutable trail entry for status and assignment
// changes. Audit writes are part of the primary path, unlike
// notifications.
type TicketAudit struct {
	ID            string
	TicketID      string
	ChangedByID   string
	ChangedByRole Role
	FromStatus    TicketStatus
	ToStatus      TicketStatus
	FromStaffID   string
	ToStaffID     string
	Note          string
	CreatedAt     time.Time
}
