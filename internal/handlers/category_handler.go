package handlers

import (
	"quickbuy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles the read-only category routes.
type CategoryHandler struct {
	service *services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// RegisterRoutes registers the category routes.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleList)
	router.Get("/category/:slug", h.HandleGetBySlug)
}

// HandleList returns every category.
func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	categories, err := h.service.List()
	if err != nil {
		return respondError(c, "Error while getting all categories", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "All categories list",
		"category": categories,
	})
}

// HandleGetBySlug returns a single category.
func (h *CategoryHandler) HandleGetBySlug(c *fiber.Ctx) error {
	category, err := h.service.GetBySlug(c.Params("slug"))
	if err != nil {
		return respondError(c, "Error while getting single category", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Get single category successfully",
		"category": category,
	})
}
