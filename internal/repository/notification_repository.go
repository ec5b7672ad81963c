package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationFilter scopes list/count queries.
type NotificationFilter struct {
	StaffID    string
	UnreadOnly bool
	Since      *time.Time
	Limit      int
	Offset     int
}

// NotificationRepository persists per-staff advisory records.
type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error)
	Count(ctx context.Context, filter NotificationFilter) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllReadForStaff(ctx context.Context, staffID string) error
	// MarkReadForTicket returns the distinct staff ids whose unread
	// notifications were affected, for cache invalidation.
	MarkReadForTicket(ctx context.Context, ticketID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationColumns = `id, staff_id, type, title, message, ticket_id, message_id, read, created_at, read_at`

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	const query = `
        INSERT INTO notifications (staff_id, type, title, message, ticket_id, message_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notif.StaffID,
		notif.Type,
		notif.Title,
		notif.Message,
		notif.TicketID,
		notif.MessageID,
	).Scan(&notif.ID, &notif.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `SELECT ` + notificationColumns + ` FROM notifications WHERE id=$1`
	var notif domain.Notification
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&notif.ID,
		&notif.StaffID,
		&notif.Type,
		&notif.Title,
		&notif.Message,
		&notif.TicketID,
		&notif.MessageID,
		&notif.Read,
		&notif.CreatedAt,
		&notif.ReadAt,
	); err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE staff_id=$1`
	args := []any{filter.StaffID}
	if filter.UnreadOnly {
		query += ` AND read=FALSE`
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		query += ` AND created_at > $2`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notif domain.Notification
		if err := rows.Scan(
			&notif.ID,
			&notif.StaffID,
			&notif.Type,
			&notif.Title,
			&notif.Message,
			&notif.TicketID,
			&notif.MessageID,
			&notif.Read,
			&notif.CreatedAt,
			&notif.ReadAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notif)
	}
	return result, rows.Err()
}

func (r *notificationRepository) Count(ctx context.Context, filter NotificationFilter) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE staff_id=$1`
	args := []any{filter.StaffID}
	if filter.UnreadOnly {
		query += ` AND read=FALSE`
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		query += ` AND created_at > $2`
	}
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read=TRUE, read_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllReadForStaff(ctx context.Context, staffID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read=TRUE, read_at=NOW() WHERE staff_id=$1 AND read=FALSE`, staffID)
	return err
}

func (r *notificationRepository) MarkReadForTicket(ctx context.Context, ticketID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE notifications SET read=TRUE, read_at=NOW()
         WHERE ticket_id=$1 AND read=FALSE
         RETURNING staff_id`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	var staffIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		staffIDs = append(staffIDs, id)
	}
	return staffIDs, rows.Err()
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
