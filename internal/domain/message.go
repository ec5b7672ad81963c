package domain

import "time"

// Message is one entry in a ticket's append-only thread. Sender identity
// is resolved by id equality against the ticket's owner/assignee; no role
// is stored on the message itself.
type Message struct {
	ID          string
	TicketID    string
	SenderID    string
	SenderName  string
	Body        string
	Attachments []Attachment
	Timestamp   time.Time
}

// Attachment stores uploaded file metadata for a message.
type Attachment struct {
	ID        string
	MessageID string
	FileName  string
	SizeBytes int64
	MimeType  string
	FilePath  string
	CreatedAt time.Time
}
