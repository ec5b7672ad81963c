package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func addStaff(t *testing.T, repo *memUserRepo, id, name, department string) {
	t.Helper()
	user := &domain.User{ID: id, Name: name, Email: id + "@example.com", Role: domain.RoleStaff, Department: department}
	require.NoError(t, repo.Create(context.Background(), user))
}

func addAssignedTickets(t *testing.T, repo *memTicketRepo, staffID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Create(context.Background(), &domain.Ticket{
			Title:           "t",
			Description:     "d",
			OwnerID:         "client-1",
			Status:          domain.TicketStatusOpen,
			Category:        "Billing",
			AssignedStaffID: staffID,
		}))
	}
}

func newAssignmentFixture(tieBreaker TieBreaker) (*AssignmentService, *memUserRepo, *memTicketRepo, *memAuditRepo, *captureDispatcher) {
	users := newMemUserRepo()
	tickets := newMemTicketRepo()
	audits := newMemAuditRepo()
	dispatcher := newCaptureDispatcher()
	svc := NewAssignmentService(AssignmentDependencies{
		Directory:  NewDirectoryService(users, tickets),
		TicketRepo: tickets,
		AuditRepo:  audits,
		Dispatcher: dispatcher,
		TieBreaker: tieBreaker,
	})
	return svc, users, tickets, audits, dispatcher
}

func TestSelectStaffPrefersLeastLoaded(t *testing.T) {
	svc, users, tickets, _, _ := newAssignmentFixture(func(int) int { return 0 })
	addStaff(t, users, "staff-a", "Alice", "Billing")
	addStaff(t, users, "staff-b", "Bob", "Billing")
	addStaff(t, users, "staff-c", "Cara", "Billing")
	addAssignedTickets(t, tickets, "staff-a", 2)
	addAssignedTickets(t, tickets, "staff-c", 1)

	chosen, err := svc.SelectStaffForDepartment(context.Background(), "Billing")
	require.NoError(t, err)
	require.NotNil(t, chosen)
	assert.Equal(t, "staff-b", chosen.ID)
	assert.Equal(t, "Bob", chosen.Name)
}

func TestSelectStaffCountsIgnoreStatus(t *testing.T) {
	svc, users, tickets, _, _ := newAssignmentFixture(func(int) int { return 0 })
	addStaff(t, users, "staff-a", "Alice", "Billing")
	addStaff(t, users, "staff-b", "Bob", "Billing")
	// resolved tickets still count toward load
	require.NoError(t, tickets.Create(context.Background(), &domain.Ticket{
		Title: "t", Description: "d", OwnerID: "client-1",
		Status: domain.TicketStatusResolved, Category: "Billing", AssignedStaffID: "staff-a",
	}))

	chosen, err := svc.SelectStaffForDepartment(context.Background(), "Billing")
	require.NoError(t, err)
	require.NotNil(t, chosen)
	assert.Equal(t, "staff-b", chosen.ID)
}

func TestSelectStaffTieBreak(t *testing.T) {
	var sawPool int
	svc, users, _, _, _ := newAssignmentFixture(func(n int) int {
		sawPool = n
		return 1
	})
	addStaff(t, users, "staff-a", "Alice", "Billing")
	addStaff(t, users, "staff-b", "Bob", "Billing")
	addStaff(t, users, "staff-c", "Cara", "Support")

	chosen, err := svc.SelectStaffForDepartment(context.Background(), "Billing")
	require.NoError(t, err)
	require.NotNil(t, chosen)
	assert.Equal(t, 2, sawPool)
	assert.Equal(t, "staff-b", chosen.ID)
}

func TestSelectStaffMatchesNormalizedDepartment(t *testing.T) {
	svc, users, _, _, _ := newAssignmentFixture(func(int) int { return 0 })
	addStaff(t, users, "staff-a", "Alice", "  Technical Support ")

	chosen, err := svc.SelectStaffForDepartment(context.Background(), "technical support")
	require.NoError(t, err)
	require.NotNil(t, chosen)
	assert.Equal(t, "staff-a", chosen.ID)
}

func TestSelectStaffExcludesDeletedAndOtherRoles(t *testing.T) {
	svc, users, _, _, _ := newAssignmentFixture(func(int) int { return 0 })
	addStaff(t, users, "staff-gone", "Gone", "Billing")
	require.NoError(t, users.SoftDelete(context.Background(), "staff-gone"))
	require.NoError(t, users.Create(context.Background(), &domain.User{
		ID: "admin-1", Name: "Admin", Email: "admin@example.com",
		Role: domain.RoleAdmin, Department: "Billing",
	}))

	chosen, err := svc.SelectStaffForDepartment(context.Background(), "Billing")
	require.NoError(t, err)
	assert.Nil(t, chosen)
}

func TestSelectStaffEmptyCategory(t *testing.T) {
	svc, users, _, _, _ := newAssignmentFixture(func(int) int { return 0 })
	addStaff(t, users, "staff-a", "Alice", "Billing")

	chosen, err := svc.SelectStaffForDepartment(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, chosen)
}

func TestAssignTicketBlankCategoryClears(t *testing.T) {
	svc, _, tickets, _, _ := newAssignmentFixture(func(int) int { return 0 })
	ticket := &domain.Ticket{
		Title: "printer down", Description: "d", OwnerID: "client-1",
		Status:             domain.TicketStatusInProgress,
		Category:           "Hardware",
		AssignedStaffID:    "staff-a",
		AssignedStaffName:  "Alice",
		AssignedDepartment: "Hardware",
	}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	outcome, err := svc.AssignTicket(context.Background(), ticket, "", "admin-1")
	require.NoError(t, err)
	assert.False(t, outcome.Assigned)
	assert.Nil(t, outcome.Staff)
	assert.Equal(t, MsgCategoryCleared, outcome.Message)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Category)
	assert.Empty(t, stored.AssignedStaffID)
	assert.Empty(t, stored.AssignedStaffName)
	assert.Empty(t, stored.AssignedDepartment)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
}

func TestAssignTicketNoStaffAvailable(t *testing.T) {
	svc, _, tickets, _, dispatcher := newAssignmentFixture(func(int) int { return 0 })
	ticket := &domain.Ticket{
		Title: "t", Description: "d", OwnerID: "client-1",
		Status:            domain.TicketStatusPending,
		AssignedStaffID:   "staff-old",
		AssignedStaffName: "Old",
	}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	outcome, err := svc.AssignTicket(context.Background(), ticket, "Networking", "admin-1")
	require.NoError(t, err)
	assert.False(t, outcome.Assigned)
	assert.Equal(t, MsgNoStaffAvailable, outcome.Message)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Networking", stored.Category)
	assert.Empty(t, stored.AssignedStaffID)
	assert.Equal(t, domain.TicketStatusPending, stored.Status)
	assert.Empty(t, dispatcher.eventsOfType(events.EventTicketAssigned))
}

func TestAssignTicketSuccess(t *testing.T) {
	svc, users, tickets, audits, dispatcher := newAssignmentFixture(func(int) int { return 0 })
	addStaff(t, users, "staff-a", "Alice", "Billing")
	ticket := &domain.Ticket{
		Title: "t", Description: "d", OwnerID: "client-1",
		Status: domain.TicketStatusPending,
	}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	outcome, err := svc.AssignTicket(context.Background(), ticket, "billing", "admin-1")
	require.NoError(t, err)
	assert.True(t, outcome.Assigned)
	require.NotNil(t, outcome.Staff)
	assert.Equal(t, "staff-a", outcome.Staff.ID)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "billing", stored.Category)
	assert.Equal(t, "staff-a", stored.AssignedStaffID)
	assert.Equal(t, "Alice", stored.AssignedStaffName)
	assert.Equal(t, "Billing", stored.AssignedDepartment)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)

	entries, err := audits.ListByTicket(context.Background(), ticket.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "staff-a", entries[0].ToStaffID)
	assert.Equal(t, domain.TicketStatusPending, entries[0].FromStatus)

	published := dispatcher.eventsOfType(events.EventTicketAssigned)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.TicketAssignedPayload)
	require.True(t, ok)
	assert.Equal(t, "staff-a", payload.StaffID)
}

func TestAssignTicketStatusForcedOpenOnReassign(t *testing.T) {
	svc, users, tickets, _, _ := newAssignmentFixture(func(int) int { return 0 })
	addStaff(t, users, "staff-a", "Alice", "Billing")
	ticket := &domain.Ticket{
		Title: "t", Description: "d", OwnerID: "client-1",
		Status: domain.TicketStatusResolved,
	}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	_, err := svc.AssignTicket(context.Background(), ticket, "Billing", "admin-1")
	require.NoError(t, err)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestAssignTicketSameCategoryReselects(t *testing.T) {
	// deterministic tie-break: always pick the last candidate
	svc, users, tickets, _, _ := newAssignmentFixture(func(n int) int { return n - 1 })
	addStaff(t, users, "staff-a", "Alice", "Billing")
	addStaff(t, users, "staff-b", "Bob", "Billing")
	ticket := &domain.Ticket{Title: "t", Description: "d", OwnerID: "client-1", Status: domain.TicketStatusPending}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	outcome, err := svc.AssignTicket(context.Background(), ticket, "Billing", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "staff-b", outcome.Staff.ID)

	// staff-b now carries the ticket, so a repeated category change
	// re-runs selection and lands on the now-least-loaded staff-a
	outcome, err = svc.AssignTicket(context.Background(), ticket, "Billing", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "staff-a", outcome.Staff.ID)
}
