package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// MessageRepository manages ticket thread messages and their attachments.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
	DeleteByTicket(ctx context.Context, ticketID string) error
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, sender_id, sender_name, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderID,
		msg.SenderName,
		msg.Body,
	).Scan(&msg.ID, &msg.Timestamp); err != nil {
		return err
	}

	const attQuery = `
        INSERT INTO message_attachments (message_id, file_name, size_bytes, mime_type, file_path)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	for i := range msg.Attachments {
		att := &msg.Attachments[i]
		att.MessageID = msg.ID
		if err := r.pool.QueryRow(ctx, attQuery,
			att.MessageID,
			att.FileName,
			att.SizeBytes,
			att.MimeType,
			att.FilePath,
		).Scan(&att.ID, &att.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// ListByTicket returns the thread ordered by timestamp ascending.
func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, sender_id, sender_name, body, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Body,
			&msg.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		attachments, err := r.listAttachments(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Attachments = attachments
	}
	return result, nil
}

// DeleteByTicket removes all messages for a ticket; attachment rows go
// with them via the FK cascade.
func (r *messageRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE ticket_id=$1`, ticketID)
	return err
}

func (r *messageRepository) listAttachments(ctx context.Context, messageID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, message_id, file_name, size_bytes, mime_type, file_path, created_at
        FROM message_attachments WHERE message_id=$1`
	rows, err := r.pool.Query(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.MessageID,
			&att.FileName,
			&att.SizeBytes,
			&att.MimeType,
			&att.FilePath,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}
