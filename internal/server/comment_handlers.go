package server

import (
	"context"

	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parentId"`
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// GetCommentTree handles GET /api/v1/boards/:boardId/comments
// @Summary Comment tree page
// @Description One page of root comments, each with all of its replies oldest first
// @Tags comments
// @Produce json
// @Param boardId path int true "Board ID"
// @Param page query int false "Zero-based page"
// @Param size query int false "Roots per page (1-100)"
// @Param sort query string false "createdAt or id"
// @Param direction query string false "asc (default) or desc"
// @Success 200 {object} models.CommonAPIResponse{data=service.CommentTreePage}
// @Failure 400 {object} models.CommonAPIResponse
// @Router /v1/boards/{boardId}/comments [get]
func (s *Server) GetCommentTree(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "boardId")
	if err != nil {
		return nil
	}
	req, err := parsePageRequest(c, treePageDefaults)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	page, err := s.commentService.GetCommentTreePage(c.UserContext(), boardID, req)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, page)
}

// CreateComment handles POST /api/v1/boards/:boardId/comments
// @Summary Create a comment or a reply
// @Description Without parentId a root comment is created; replies may only target root comments
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param boardId path int true "Board ID"
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} models.CommonAPIResponse{data=models.CommentView}
// @Failure 404 {object} models.CommonAPIResponse
// @Failure 409 {object} models.CommonAPIResponse
// @Router /v1/boards/{boardId}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	boardID, err := s.parseID(c, "boardId")
	if err != nil {
		return nil
	}
	var req createCommentRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	view, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		BoardID:  boardID,
		AuthorID: userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	s.publishCommentEvent(ctx, notifications.CommentCreated, userID, view)
	return models.Respond(c, fiber.StatusCreated, view)
}

// CountComments handles GET /api/v1/boards/:boardId/comments/count
func (s *Server) CountComments(c *fiber.Ctx) error {
	boardID, err := s.parseID(c, "boardId")
	if err != nil {
		return nil
	}
	count, err := s.commentService.CountComments(c.UserContext(), boardID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"boardId": boardID, "count": count})
}

// UpdateComment handles PATCH /api/v1/comments/:id (owner or admin)
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body updateCommentRequest true "New content"
// @Success 200 {object} models.CommonAPIResponse{data=models.CommentView}
// @Failure 403 {object} models.CommonAPIResponse
// @Router /v1/comments/{id} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, 0, err)
	}

	view, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		ActorID:   userID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	s.publishCommentEvent(ctx, notifications.CommentUpdated, userID, view)
	return models.Respond(c, fiber.StatusOK, view)
}

// DeleteComment handles DELETE /api/v1/comments/:id (owner or admin)
// @Summary Soft delete a comment
// @Description The comment stays in its thread with placeholder content
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.CommonAPIResponse{data=models.CommentView}
// @Failure 409 {object} models.CommonAPIResponse
// @Router /v1/comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		ActorID:   userID,
		CommentID: commentID,
	})
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	s.publishCommentEvent(ctx, notifications.CommentDeleted, userID, view)
	return models.Respond(c, fiber.StatusOK, view)
}

// LikeComment handles POST /api/v1/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.changeLikes(c, s.commentService.LikeComment)
}

// UnlikeComment handles DELETE /api/v1/comments/:id/like
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	return s.changeLikes(c, s.commentService.UnlikeComment)
}

func (s *Server) changeLikes(c *fiber.Ctx, apply func(ctx context.Context, commentID uint) (*models.CommentView, error)) error {
	ctx := c.UserContext()
	userID, err := currentUserID(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := apply(ctx, commentID)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}

	s.publishCommentEvent(ctx, notifications.CommentLiked, userID, view)
	return models.Respond(c, fiber.StatusOK, view)
}
