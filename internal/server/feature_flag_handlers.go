package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/v1/feature-flags
// @Summary Feature flags for the caller
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CommonAPIResponse
// @Router /v1/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, s.featureFlags.Evaluate(userID))
}
