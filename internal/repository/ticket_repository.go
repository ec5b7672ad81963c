package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	OwnerID         *string
	AssignedStaffID *string
	Unassigned      bool // category empty
	AssignedOnly    bool // category non-empty
	Department      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Limit           int
	Offset          int
}

// CategoryCount is one row of the per-category aggregation.
type CategoryCount struct {
	Category string
	Count    int
}

// StatusCount is one row of the per-status aggregation.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByAssignee(ctx context.Context, staffIDs []string) (map[string]int, error)
	CountByOwner(ctx context.Context, ownerIDs []string) (map[string]int, error)
	CountByCategory(ctx context.Context, filter TicketFilter) ([]CategoryCount, error)
	CountByStatus(ctx context.Context, filter TicketFilter) ([]StatusCount, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, owner_id, status, priority, category,
               assigned_staff_id, assigned_staff_name, assigned_department,
               has_agent_reply, has_client_viewed, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, owner_id, status, priority, category,
            assigned_staff_id, assigned_staff_name, assigned_department, has_agent_reply, has_client_viewed)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.OwnerID,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedStaffID,
		ticket.AssignedStaffName,
		ticket.AssignedDepartment,
		ticket.HasAgentReply,
		ticket.HasClientViewed,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5,
            assigned_staff_id=$6, assigned_staff_name=$7, assigned_department=$8,
            has_agent_reply=$9, has_client_viewed=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedStaffID,
		ticket.AssignedStaffName,
		ticket.AssignedDepartment,
		ticket.HasAgentReply,
		ticket.HasClientViewed,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.OwnerID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.AssignedStaffID,
		&ticket.AssignedStaffName,
		&ticket.AssignedDepartment,
		&ticket.HasAgentReply,
		&ticket.HasClientViewed,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := ticketClauses(filter)

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// CountByAssignee aggregates ticket counts per assigned staff, any
// status. Staff with zero tickets are absent from the result map.
func (r *ticketRepository) CountByAssignee(ctx context.Context, staffIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(staffIDs))
	if len(staffIDs) == 0 {
		return counts, nil
	}
	const query = `
        SELECT assigned_staff_id, COUNT(*) FROM tickets
        WHERE assigned_staff_id = ANY($1)
        GROUP BY assigned_staff_id`
	rows, err := r.pool.Query(ctx, query, staffIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) CountByOwner(ctx context.Context, ownerIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return counts, nil
	}
	const query = `
        SELECT owner_id, COUNT(*) FROM tickets
        WHERE owner_id = ANY($1)
        GROUP BY owner_id`
	rows, err := r.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) CountByCategory(ctx context.Context, filter TicketFilter) ([]CategoryCount, error) {
	clauses, args := ticketClauses(filter)
	query := `SELECT category, COUNT(*) FROM tickets WHERE ` + strings.Join(clauses, " AND ") +
		` GROUP BY category ORDER BY COUNT(*) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryCount
	for rows.Next() {
		var entry CategoryCount
		if err := rows.Scan(&entry.Category, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByStatus(ctx context.Context, filter TicketFilter) ([]StatusCount, error) {
	clauses, args := ticketClauses(filter)
	query := `SELECT status, COUNT(*) FROM tickets WHERE ` + strings.Join(clauses, " AND ") +
		` GROUP BY status ORDER BY COUNT(*) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var entry StatusCount
		if err := rows.Scan(&entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func ticketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		clauses = append(clauses, fmt.Sprintf("assigned_staff_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "category=''")
	}
	if filter.AssignedOnly {
		clauses = append(clauses, "category<>''")
	}
	if filter.Department != nil {
		args = append(args, domain.NormalizeKey(*filter.Department))
		clauses = append(clauses, fmt.Sprintf("LOWER(assigned_department)=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return clauses, args
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.OwnerID,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Category,
			&ticket.AssignedStaffID,
			&ticket.AssignedStaffName,
			&ticket.AssignedDepartment,
			&ticket.HasAgentReply,
			&ticket.HasClientViewed,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
