package service

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DirectoryService answers staff/client lookup queries: assignment
// candidates per department and per-account ticket counts.
type DirectoryService struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
}

// NewDirectoryService creates the service.
func NewDirectoryService(users repository.UserRepository, tickets repository.TicketRepository) *DirectoryService {
	return &DirectoryService{users: users, tickets: tickets}
}

// FindCandidateStaff returns non-deleted staff whose department matches
// the target under trim+lowercase normalization. An empty or blank
// department never matches anyone.
func (s *DirectoryService) FindCandidateStaff(ctx context.Context, department string) ([]domain.StaffRef, error) {
	key := domain.NormalizeKey(department)
	if key == "" {
		return nil, nil
	}

	staff, err := s.users.ListStaffWithDepartment(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var matches []domain.StaffRef
	for _, member := range staff {
		if domain.NormalizeKey(member.Department) != key {
			continue
		}
		if member.ID == "" {
			continue
		}
		name := member.Name
		if name == "" {
			name = "Staff"
		}
		matches = append(matches, domain.StaffRef{
			ID:         member.ID,
			Name:       name,
			Department: member.Department,
		})
	}
	return matches, nil
}

// TicketCounts returns current assigned-ticket counts per staff id,
// regardless of ticket status. Staff absent from the map hold zero.
func (s *DirectoryService) TicketCounts(ctx context.Context, staffIDs []string) (map[string]int, error) {
	counts, err := s.tickets.CountByAssignee(ctx, staffIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return counts, nil
}

// AccountSummary is a directory listing row with a ticket count.
type AccountSummary struct {
	ID         string
	Name       string
	Email      string
	Department string
	Number     string
	City       string
	Province   string
	CreatedAt  time.Time
	Tickets    int
}

// StaffSummaries lists non-deleted staff with their assigned-ticket counts.
func (s *DirectoryService) StaffSummaries(ctx context.Context) ([]AccountSummary, error) {
	staff, err := s.users.ListByRole(ctx, domain.RoleStaff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ids := make([]string, 0, len(staff))
	for _, member := range staff {
		ids = append(ids, member.ID)
	}
	counts, err := s.tickets.CountByAssignee(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return summarize(staff, counts), nil
}

// ClientSummaries lists clients with the number of tickets they own.
func (s *DirectoryService) ClientSummaries(ctx context.Context) ([]AccountSummary, error) {
	clients, err := s.users.ListByRole(ctx, domain.RoleClient)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ids := make([]string, 0, len(clients))
	for _, client := range clients {
		ids = append(ids, client.ID)
	}
	counts, err := s.tickets.CountByOwner(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return summarize(clients, counts), nil
}

func summarize(users []domain.User, counts map[string]int) []AccountSummary {
	result := make([]AccountSummary, 0, len(users))
	for _, user := range users {
		result = append(result, AccountSummary{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Department: user.Department,
			Number:     user.Number,
			City:       user.City,
			Province:   user.Province,
			CreatedAt:  user.CreatedAt,
			Tickets:    counts[user.ID],
		})
	}
	return result
}
