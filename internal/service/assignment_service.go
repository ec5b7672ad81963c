package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Assignment outcome messages returned to callers verbatim.
const (
	MsgCategoryCleared  = "Category cleared"
	MsgNoStaffAvailable = "No staff available for this department"
)

// AssignmentOutcome reports what a category change did to a ticket.
type AssignmentOutcome struct {
	Assigned bool
	Staff    *domain.StaffRef
	Message  string
}

// TieBreaker picks an index in [0,n). The default is uniform random;
// tests inject a deterministic one.
type TieBreaker func(n int) int

// AssignmentService routes tickets to the least-loaded staff member of
// the department matching the ticket's category.
type AssignmentService struct {
	directory  *DirectoryService
	tickets    repository.TicketRepository
	audits     repository.AuditRepository
	dispatcher events.Dispatcher
	pick       TieBreaker
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Directory  *DirectoryService
	TicketRepo repository.TicketRepository
	AuditRepo  repository.AuditRepository
	Dispatcher events.Dispatcher
	TieBreaker TieBreaker
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	pick := deps.TieBreaker
	if pick == nil {
		pick = rand.Intn
	}
	return &AssignmentService{
		directory:  deps.Directory,
		tickets:    deps.TicketRepo,
		audits:     deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		pick:       pick,
	}
}

// SelectStaffForDepartment picks a staff member for the department
// matching the given category: among the candidates with the fewest
// currently assigned tickets, one is chosen uniformly at random.
// An empty category or an empty candidate pool yields nil, not an error.
func (s *AssignmentService) SelectStaffForDepartment(ctx context.Context, category string) (*domain.StaffRef, error) {
	if domain.NormalizeKey(category) == "" {
		return nil, nil
	}

	candidates, err := s.directory.FindCandidateStaff(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, staff := range candidates {
		ids = append(ids, staff.ID)
	}
	counts, err := s.directory.TicketCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	minCount := counts[candidates[0].ID]
	for _, staff := range candidates[1:] {
		if c := counts[staff.ID]; c < minCount {
			minCount = c
		}
	}

	var leastLoaded []domain.StaffRef
	for _, staff := range candidates {
		if counts[staff.ID] == minCount {
			leastLoaded = append(leastLoaded, staff)
		}
	}

	chosen := leastLoaded[s.pick(len(leastLoaded))]
	return &chosen, nil
}

// AssignTicket applies a category change to the ticket and re-runs
// staff selection from scratch; a repeated category reselects rather
// than pinning to the current assignee. The new category is stored
// verbatim, including an empty string to clear it. Status moves to
// Open only on a successful assignment; the clear and no-staff paths
// leave it untouched.
func (s *AssignmentService) AssignTicket(ctx context.Context, ticket *domain.Ticket, newCategory, actorID string) (AssignmentOutcome, error) {
	prevStaffID := ticket.AssignedStaffID
	prevStatus := ticket.Status
	ticket.Category = newCategory

	if domain.NormalizeKey(newCategory) == "" {
		clearAssignment(ticket)
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return AssignmentOutcome{}, apperrors.MapError(err)
		}
		return AssignmentOutcome{Assigned: false, Staff: nil, Message: MsgCategoryCleared}, nil
	}

	staff, err := s.SelectStaffForDepartment(ctx, newCategory)
	if err != nil {
		return AssignmentOutcome{}, err
	}

	if staff == nil {
		clearAssignment(ticket)
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return AssignmentOutcome{}, apperrors.MapError(err)
		}
		return AssignmentOutcome{Assigned: false, Staff: nil, Message: MsgNoStaffAvailable}, nil
	}

	ticket.AssignedStaffID = staff.ID
	ticket.AssignedStaffName = staff.Name
	ticket.AssignedDepartment = staff.Department
	if ticket.AssignedDepartment == "" {
		ticket.AssignedDepartment = newCategory
	}
	ticket.Status = domain.TicketStatusOpen

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return AssignmentOutcome{}, apperrors.MapError(err)
	}
	if err := s.recordAssignment(ctx, ticket, actorID, prevStaffID, prevStatus); err != nil {
		return AssignmentOutcome{}, apperrors.MapError(err)
	}

	s.publishAssigned(ctx, ticket, actorID, staff)
	return AssignmentOutcome{Assigned: true, Staff: staff}, nil
}

func clearAssignment(ticket *domain.Ticket) {
	ticket.AssignedStaffID = ""
	ticket.AssignedStaffName = ""
	ticket.AssignedDepartment = ""
}

func (s *AssignmentService) recordAssignment(ctx context.Context, ticket *domain.Ticket, actorID, prevStaffID string, prevStatus domain.TicketStatus) error {
	if s.audits == nil {
		return nil
	}
	return s.audits.Create(ctx, &domain.TicketAudit{
		TicketID:      ticket.ID,
		ChangedByID:   actorID,
		ChangedByRole: domain.RoleAdmin,
		FromStatus:    prevStatus,
		ToStatus:      ticket.Status,
		FromStaffID:   prevStaffID,
		ToStaffID:     ticket.AssignedStaffID,
		Note:          "category_assignment",
	})
}

func (s *AssignmentService) publishAssigned(ctx context.Context, ticket *domain.Ticket, actorID string, staff *domain.StaffRef) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		Actor:     events.Actor{ID: actorID, Role: domain.RoleAdmin},
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			StaffID:     staff.ID,
			StaffName:   staff.Name,
			Department:  ticket.AssignedDepartment,
			TicketTitle: ticket.Title,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
