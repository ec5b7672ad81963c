package dto

// CreateTicketRequest is the ticket submission payload. One of UserID
// or Email identifies the owner.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
}

// UpdateCategoryRequest routes a ticket into a department.
type UpdateCategoryRequest struct {
	Category string `json:"category"`
}

// UpdateTicketRequest is a partial ticket edit. Omitted fields are
// left untouched; an explicit empty category clears the assignment.
type UpdateTicketRequest struct {
	Category *string `json:"category"`
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}
