package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// CatalogHandler serves the category catalog backing the complaint form.
type CatalogHandler struct {
	service *service.CategoryService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(categoryService *service.CategoryService) *CatalogHandler {
	return &CatalogHandler{service: categoryService}
}

// ListCategories GET /categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponses(categories)})
}
