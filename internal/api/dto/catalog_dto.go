package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CategoryResponse response.
type CategoryResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewCategoryResponses maps domain categories.
func NewCategoryResponses(categories []domain.Category) []CategoryResponse {
	items := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, CategoryResponse{
			ID:         category.ID,
			Name:       category.Name,
			Department: category.Department,
			CreatedAt:  category.CreatedAt,
		})
	}
	return items
}
