package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// UserResponse is the externally visible account shape.
type UserResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	Number     string    `json:"number,omitempty"`
	City       string    `json:"city,omitempty"`
	Province   string    `json:"province,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewUserResponse maps an account, dropping the password hash.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Department: user.Department,
		Number:     user.Number,
		City:       user.City,
		Province:   user.Province,
		CreatedAt:  user.CreatedAt,
	}
}

// SessionResponse is the login result.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// AttachmentResponse describes a stored file on a message.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
	FilePath  string `json:"filePath"`
}

// MessageResponse is one thread entry.
type MessageResponse struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticketId"`
	SenderID    string               `json:"senderId"`
	SenderName  string               `json:"senderName"`
	Message     string               `json:"message"`
	Attachments []AttachmentResponse `json:"attachments"`
	Timestamp   time.Time            `json:"timestamp"`
}

// NewMessageResponse maps a thread entry.
func NewMessageResponse(msg *domain.Message) MessageResponse {
	attachments := make([]AttachmentResponse, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, AttachmentResponse{
			ID:        att.ID,
			FileName:  att.FileName,
			SizeBytes: att.SizeBytes,
			MimeType:  att.MimeType,
			FilePath:  att.FilePath,
		})
	}
	return MessageResponse{
		ID:          msg.ID,
		TicketID:    msg.TicketID,
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		Message:     msg.Body,
		Attachments: attachments,
		Timestamp:   msg.Timestamp,
	}
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string     `json:"id"`
	StaffID   string     `json:"staffId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	TicketID  string     `json:"ticketId,omitempty"`
	MessageID string     `json:"messageId,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// NewNotificationResponse maps an inbox entry.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		StaffID:   n.StaffID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		TicketID:  n.TicketID,
		MessageID: n.MessageID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}

// CategoryResponse is one catalogue entry.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	TicketCount int       `json:"ticketCount,omitempty"`
	StaffCount  int       `json:"staffCount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCategoryResponse maps a catalogue entry.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Code:      category.Code,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}

// AuditResponse is one ticket history entry.
type AuditResponse struct {
	ID            string    `json:"id"`
	TicketID      string    `json:"ticketId"`
	ChangedByID   string    `json:"changedById,omitempty"`
	ChangedByRole string    `json:"changedByRole,omitempty"`
	FromStatus    string    `json:"fromStatus,omitempty"`
	ToStatus      string    `json:"toStatus,omitempty"`
	FromStaffID   string    `json:"fromStaffId,omitempty"`
	ToStaffID     string    `json:"toStaffId,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewAuditResponse maps a history entry.
func NewAuditResponse(audit *domain.TicketAudit) AuditResponse {
	return AuditResponse{
		ID:            audit.ID,
		TicketID:      audit.TicketID,
		ChangedByID:   audit.ChangedByID,
		ChangedByRole: string(audit.ChangedByRole),
		FromStatus:    string(audit.FromStatus),
		ToStatus:      string(audit.ToStatus),
		FromStaffID:   audit.FromStaffID,
		ToStaffID:     audit.ToStaffID,
		Note:          audit.Note,
		CreatedAt:     audit.CreatedAt,
	}
}

// DirectoryEntry is one staff or client listing row.
type DirectoryEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	Number     string    `json:"number,omitempty"`
	City       string    `json:"city,omitempty"`
	Province   string    `json:"province,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Tickets    int       `json:"tickets"`
}
