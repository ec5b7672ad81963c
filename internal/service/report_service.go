package service

import (
	"context"
	"math"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ReportService produces aggregate views of the ticket board for the
// admin dashboard.
type ReportService struct {
	tickets   repository.TicketRepository
	directory *DirectoryService
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, directory *DirectoryService) *ReportService {
	return &ReportService{tickets: tickets, directory: directory}
}

// ReportFilter narrows report aggregates to a department or a
// creation-time window. Zero values mean no restriction.
type ReportFilter struct {
	Department string
	From       *time.Time
	To         *time.Time
}

func (f ReportFilter) ticketFilter() repository.TicketFilter {
	filter := repository.TicketFilter{
		CreatedFrom: f.From,
		CreatedTo:   f.To,
	}
	if f.Department != "" {
		dept := f.Department
		filter.Department = &dept
	}
	return filter
}

// CategoryShare is one row of the tickets-per-category breakdown.
type CategoryShare struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatusSummary counts tickets per lifecycle status.
type StatusSummary struct {
	Pending    int `json:"pending"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Total      int `json:"total"`
}

// StaffLoad is one row of the staff workload report.
type StaffLoad struct {
	StaffID       string  `json:"staffId"`
	Name          string  `json:"name"`
	Department    string  `json:"department"`
	TicketCount   int     `json:"ticketCount"`
	Resolved      int     `json:"resolved"`
	ResolvedShare float64 `json:"resolvedShare"`
}

// TicketsByCategory returns each category's share of the ticket board.
// Percentages are rounded to one decimal place. Uncategorized tickets
// appear under an empty category key.
func (s *ReportService) TicketsByCategory(ctx context.Context, filter ReportFilter) ([]CategoryShare, error) {
	counts, err := s.tickets.CountByCategory(ctx, filter.ticketFilter())
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	shares := make([]CategoryShare, 0, len(counts))
	for _, c := range counts {
		share := CategoryShare{Category: c.Category, Count: c.Count}
		if total > 0 {
			share.Percentage = math.Round(float64(c.Count)/float64(total)*1000) / 10
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// StatusBreakdown tallies the board by lifecycle status.
func (s *ReportService) StatusBreakdown(ctx context.Context, filter ReportFilter) (StatusSummary, error) {
	counts, err := s.tickets.CountByStatus(ctx, filter.ticketFilter())
	if err != nil {
		return StatusSummary{}, apperrors.MapError(err)
	}

	var summary StatusSummary
	for _, c := range counts {
		switch c.Status {
		case domain.TicketStatusPending:
			summary.Pending = c.Count
		case domain.TicketStatusOpen:
			summary.Open = c.Count
		case domain.TicketStatusInProgress:
			summary.InProgress = c.Count
		case domain.TicketStatusResolved:
			summary.Resolved = c.Count
		}
		summary.Total += c.Count
	}
	return summary, nil
}

// StaffWorkload reports the caseload and resolved share of every staff
// member, including those with no assignments. A department filter also
// narrows the staff rows themselves.
func (s *ReportService) StaffWorkload(ctx context.Context, filter ReportFilter) ([]StaffLoad, error) {
	staff, err := s.directory.users.ListByRole(ctx, domain.RoleStaff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	tickets, err := s.tickets.List(ctx, filter.ticketFilter())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assigned := make(map[string]int)
	resolved := make(map[string]int)
	for _, ticket := range tickets {
		if ticket.AssignedStaffID == "" {
			continue
		}
		assigned[ticket.AssignedStaffID]++
		if ticket.Status == domain.TicketStatusResolved {
			resolved[ticket.AssignedStaffID]++
		}
	}

	deptKey := domain.NormalizeKey(filter.Department)
	loads := make([]StaffLoad, 0, len(staff))
	for _, member := range staff {
		if member.Deleted() {
			continue
		}
		if deptKey != "" && domain.NormalizeKey(member.Department) != deptKey {
			continue
		}
		load := StaffLoad{
			StaffID:     member.ID,
			Name:        member.Name,
			Department:  member.Department,
			TicketCount: assigned[member.ID],
			Resolved:    resolved[member.ID],
		}
		if load.TicketCount > 0 {
			load.ResolvedShare = math.Round(float64(load.Resolved)/float64(load.TicketCount)*1000) / 10
		}
		loads = append(loads, load)
	}
	return loads, nil
}
