package dto

// AttachmentInput describes a file already uploaded to storage.
type AttachmentInput struct {
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
	FilePath  string `json:"filePath"`
}

// CreateMessageRequest appends an entry to a ticket's thread.
type CreateMessageRequest struct {
	SenderID    string            `json:"senderId"`
	SenderName  string            `json:"senderName"`
	Message     string            `json:"message"`
	Attachments []AttachmentInput `json:"attachments"`
}
