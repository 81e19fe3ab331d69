package server

import (
	"time"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	// Login is a username or an email address.
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
// @Summary User login
// @Description Authenticate with username or email and return a JWT access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login request"
// @Success 200 {object} models.CommonAPIResponse{data=service.LoginResult}
// @Failure 401 {object} models.CommonAPIResponse
// @Failure 403 {object} models.CommonAPIResponse
// @Router /v1/auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	result, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, result)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Revoke the current access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CommonAPIResponse
// @Router /v1/auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	expiresAt, _ := c.Locals("tokenExpiresAt").(time.Time)

	if err := s.authService.Logout(c.UserContext(), jti, expiresAt); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, nil)
}

// Me handles GET /api/v1/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CommonAPIResponse{data=models.User}
// @Router /v1/auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	user, err := s.authService.CurrentUser(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}
