package server

import (
	"agora/internal/models"
	"agora/internal/paging"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type updateUserRequest struct {
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Role   models.UserRole   `json:"role"`
	Status models.UserStatus `json:"status"`
}

// CreateUser handles POST /api/v1/users
// @Summary Sign up
// @Description Register a new account with the default role
// @Tags users
// @Accept json
// @Produce json
// @Param request body createUserRequest true "Signup request"
// @Success 201 {object} models.CommonAPIResponse{data=models.User}
// @Failure 400 {object} models.CommonAPIResponse
// @Router /v1/users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusCreated, user)
}

// GetUser handles GET /api/v1/users/:id
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.CommonAPIResponse{data=models.User}
// @Failure 404 {object} models.CommonAPIResponse
// @Router /v1/users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

// ListUsers handles GET /api/v1/users
// @Summary List users
// @Description At most one filter applies: keyword (name), then status, then role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Name contains"
// @Param status query string false "ACTIVE, SUSPENDED or DELETED"
// @Param role query string false "ROLE_USER or ROLE_ADMIN"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size"
// @Success 200 {object} models.CommonAPIResponse
// @Router /v1/users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	req, err := parsePageRequest(c, paging.DefaultRequest())
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	page, err := s.userService.ListUsers(c.UserContext(), service.ListUsersInput{
		Keyword: c.Query("keyword"),
		Status:  models.UserStatus(c.Query("status")),
		Role:    models.UserRole(c.Query("role")),
		Page:    req,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, page)
}

// UpdateUser handles PATCH /api/v1/users/:id
// @Summary Update a user
// @Description Owner or admin; role and status changes need an admin
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body updateUserRequest true "Changes"
// @Success 200 {object} models.CommonAPIResponse{data=models.User}
// @Failure 403 {object} models.CommonAPIResponse
// @Router /v1/users/{id} [patch]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateUserRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	user, err := s.userService.UpdateUser(c.UserContext(), service.UpdateUserInput{
		ActorID: actorID,
		UserID:  id,
		Name:    req.Name,
		Email:   req.Email,
		Role:    req.Role,
		Status:  req.Status,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

// ChangePassword handles POST /api/v1/users/:id/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	if err := s.userService.ChangePassword(c.UserContext(), service.ChangePasswordInput{
		ActorID:     actorID,
		UserID:      id,
		NewPassword: req.Password,
	}); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, nil)
}

// ChangeRole handles POST /api/v1/users/:id/role (admin only)
func (s *Server) ChangeRole(c *fiber.Ctx) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Role models.UserRole `json:"role"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	user, err := s.userService.ChangeRole(c.UserContext(), actorID, id, req.Role)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

// ChangeStatus handles POST /api/v1/users/:id/status (admin only)
func (s *Server) ChangeStatus(c *fiber.Ctx) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Status models.UserStatus `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	user, err := s.userService.ChangeStatus(c.UserContext(), actorID, id, req.Status)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteUser(c.UserContext(), actorID, id); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, nil)
}
