package dto

// CreateCategoryRequest registers a routable category.
type CreateCategoryRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
