package server

import (
	"strings"

	"agora/internal/models"
	"agora/internal/paging"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createBoardRequest struct {
	Title    string               `json:"title"`
	Content  string               `json:"content"`
	Category models.BoardCategory `json:"category"`
	Status   models.BoardStatus   `json:"status"`
}

// updateBoardRequest holds optional fields; omitted fields keep their value.
type updateBoardRequest struct {
	Title    *string               `json:"title"`
	Content  *string               `json:"content"`
	Category *models.BoardCategory `json:"category"`
	Status   *models.BoardStatus   `json:"status"`
	Version  *int64                `json:"version"`
}

// CreateBoard handles POST /api/v1/boards
// @Summary Create a board
// @Tags boards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createBoardRequest true "Board"
// @Success 201 {object} models.CommonAPIResponse{data=models.Board}
// @Failure 400 {object} models.CommonAPIResponse
// @Router /v1/boards [post]
func (s *Server) CreateBoard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	var req createBoardRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	board, err := s.boardService.CreateBoard(c.UserContext(), service.CreateBoardInput{
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
		Category: models.BoardCategory(strings.ToUpper(string(req.Category))),
		Status:   models.BoardStatus(strings.ToUpper(string(req.Status))),
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusCreated, board)
}

// GetBoard handles GET /api/v1/boards/:id
// @Summary Get a board
// @Tags boards
// @Produce json
// @Param id path int true "Board ID"
// @Success 200 {object} models.CommonAPIResponse{data=models.Board}
// @Failure 404 {object} models.CommonAPIResponse
// @Router /v1/boards/{id} [get]
func (s *Server) GetBoard(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	board, err := s.boardService.GetBoard(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, board)
}

// ListBoards handles GET /api/v1/boards
// @Summary List boards
// @Description Without a category every live board is listed; with one only PUBLIC boards of it
// @Tags boards
// @Produce json
// @Param category query string false "FREE, NOTICE, QNA or INFO"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size"
// @Param sort query string false "createdAt, updatedAt, title, viewCount or id"
// @Param direction query string false "asc or desc"
// @Success 200 {object} models.CommonAPIResponse
// @Router /v1/boards [get]
func (s *Server) ListBoards(c *fiber.Ctx) error {
	req, err := parsePageRequest(c, paging.DefaultRequest())
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	category := models.BoardCategory(strings.ToUpper(strings.TrimSpace(c.Query("category"))))

	page, err := s.boardService.ListBoards(c.UserContext(), category, req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, page)
}

// SearchBoards handles GET /api/v1/boards/search?keyword=
// @Summary Search boards by title
// @Tags boards
// @Produce json
// @Param keyword query string true "Title contains (case-insensitive)"
// @Success 200 {object} models.CommonAPIResponse
// @Failure 400 {object} models.CommonAPIResponse
// @Router /v1/boards/search [get]
func (s *Server) SearchBoards(c *fiber.Ctx) error {
	req, err := parsePageRequest(c, paging.DefaultRequest())
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	keyword := c.Query("keyword")
	if strings.TrimSpace(keyword) == "" {
		return models.RespondWithError(c, 0, models.ErrMissingParameter.WithMessage("keyword is required"))
	}

	page, err := s.boardService.SearchBoards(c.UserContext(), keyword, req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, page)
}

// ListBoardsByAuthor handles GET /api/v1/boards/author/:authorId
func (s *Server) ListBoardsByAuthor(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "authorId")
	if err != nil {
		return nil
	}
	req, err := parsePageRequest(c, paging.DefaultRequest())
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	page, err := s.boardService.ListBoardsByAuthor(c.UserContext(), authorID, req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, page)
}

// UpdateBoard handles PATCH /api/v1/boards/:id
// @Summary Update a board
// @Description Owner or admin. Sending the last seen version rejects stale writes with DB-409-INTEGRITY.
// @Tags boards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Board ID"
// @Param request body updateBoardRequest true "Changes"
// @Success 200 {object} models.CommonAPIResponse{data=models.Board}
// @Failure 403 {object} models.CommonAPIResponse
// @Failure 409 {object} models.CommonAPIResponse
// @Router /v1/boards/{id} [patch]
func (s *Server) UpdateBoard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateBoardRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	if req.Category != nil {
		category := models.BoardCategory(strings.ToUpper(string(*req.Category)))
		req.Category = &category
	}
	if req.Status != nil {
		status := models.BoardStatus(strings.ToUpper(string(*req.Status)))
		req.Status = &status
	}

	board, err := s.boardService.UpdateBoard(c.UserContext(), service.UpdateBoardInput{
		ActorID:  userID,
		BoardID:  id,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Status:   req.Status,
		Version:  req.Version,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, board)
}

// DeleteBoard handles DELETE /api/v1/boards/:id
func (s *Server) DeleteBoard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.boardService.DeleteBoard(c.UserContext(), userID, id); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, nil)
}

// RestoreBoard handles POST /api/v1/boards/:id/restore (admin only). The board comes back PRIVATE.
func (s *Server) RestoreBoard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	board, err := s.boardService.RestoreBoard(c.UserContext(), userID, id)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, board)
}

// IncreaseViewCount handles POST /api/v1/boards/:id/view
func (s *Server) IncreaseViewCount(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.boardService.IncreaseViewCount(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, nil)
}
