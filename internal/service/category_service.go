package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CategoryService manages the catalogue of routable ticket categories.
// Tickets store category text verbatim; the catalogue only backs the
// admin UI and reporting, so renames never rewrite existing tickets.
type CategoryService struct {
	categories repository.CategoryRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository, tickets repository.TicketRepository, users repository.UserRepository) *CategoryService {
	return &CategoryService{categories: categories, tickets: tickets, users: users}
}

// CategorySummary pairs a catalogue entry with its ticket volume and
// the number of staff serving the matching department.
type CategorySummary struct {
	Category    domain.Category
	TicketCount int
	StaffCount  int
}

// Create registers a category. Codes and names are unique under
// case-insensitive comparison.
func (s *CategoryService) Create(ctx context.Context, code, name string) (*domain.Category, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, apperrors.NewValidationError("code and name are required", nil)
	}

	existing, err := s.categories.FindByCodeOrName(ctx, code, name)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("category already exists", map[string]any{
			"code": existing.Code,
			"name": existing.Name,
		})
	}

	category := &domain.Category{Code: code, Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// List returns all active categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// Summaries returns active categories with their ticket and staff
// counts. Both joins match on the normalized category text, so tickets
// and staff keep contributing to a category's volume regardless of how
// the value was typed.
func (s *CategoryService) Summaries(ctx context.Context) ([]CategorySummary, error) {
	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	counts, err := s.tickets.CountByCategory(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	staff, err := s.users.ListStaffWithDepartment(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticketsByKey := make(map[string]int, len(counts))
	for _, c := range counts {
		ticketsByKey[domain.NormalizeKey(c.Category)] += c.Count
	}
	staffByKey := make(map[string]int, len(staff))
	for _, member := range staff {
		staffByKey[domain.NormalizeKey(member.Department)]++
	}

	summaries := make([]CategorySummary, 0, len(categories))
	for _, category := range categories {
		key := domain.NormalizeKey(category.Name)
		summaries = append(summaries, CategorySummary{
			Category:    category,
			TicketCount: ticketsByKey[key],
			StaffCount:  staffByKey[key],
		})
	}
	return summaries, nil
}

// Delete soft-deletes a category. Existing tickets keep their stored
// category text.
func (s *CategoryService) Delete(ctx context.Context, categoryID string) error {
	if err := s.categories.SoftDelete(ctx, categoryID); err != nil {
		return notFoundOr(err, "category", map[string]any{"category_id": categoryID})
	}
	return nil
}
