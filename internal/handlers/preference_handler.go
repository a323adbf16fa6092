package handlers

import (
	"quickbuy/internal/apperror"
	"quickbuy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PreferenceHandler handles the personalization routes.
type PreferenceHandler struct {
	preferences     *services.PreferenceService
	recommendations *services.RecommendationService
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(preferences *services.PreferenceService, recommendations *services.RecommendationService) *PreferenceHandler {
	return &PreferenceHandler{
		preferences:     preferences,
		recommendations: recommendations,
	}
}

// RegisterRoutes registers the personalization routes.
func (h *PreferenceHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/recommendations/:userId", h.HandleRecommend)
	router.Get("/preferences/:userId", h.HandleGetPreferences)
	router.Post("/preferences/:userId", h.HandleRecordKeyword)
}

// HandleRecommend returns the catalog ranked for a user.
func (h *PreferenceHandler) HandleRecommend(c *fiber.Ctx) error {
	products, err := h.recommendations.Recommend(c.Params("userId"))
	if err != nil {
		return respondError(c, "Error getting recommendations", err)
	}
	return c.JSON(fiber.Map{
		"success":         true,
		"recommendations": products,
	})
}

// HandleGetPreferences returns a user's keyword window.
func (h *PreferenceHandler) HandleGetPreferences(c *fiber.Ctx) error {
	window, err := h.preferences.Preferences(c.Params("userId"))
	if err != nil {
		return respondError(c, "Error getting preferences", err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"preferences": window,
	})
}

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

// HandleRecordKeyword pushes a keyword into a user's window.
func (h *PreferenceHandler) HandleRecordKeyword(c *fiber.Ctx) error {
	var req keywordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, "Invalid request body", apperror.Validation("%v", err))
	}
	window, err := h.preferences.RecordKeyword(c.Params("userId"), req.Keyword)
	if err != nil {
		return respondError(c, "Error updating preferences", err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Preferences updated",
		"preferences": window,
	})
}
