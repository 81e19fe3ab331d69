package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/paging"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, 0,
			models.ErrTypeMismatch.WithMessage("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "boardId" -> "board ID", "authorId" -> "author ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// currentUserID returns the authenticated caller set by AuthRequired.
func currentUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return 0, models.NewUnauthorizedError("Authentication is required.")
	}
	return userID, nil
}

// parseBody decodes the JSON request body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return models.ErrInvalidJSON.Wrap(err)
	}
	return nil
}

// treePageDefaults orders comment threads oldest first.
var treePageDefaults = paging.PageRequest{
	Page:      0,
	Size:      paging.DefaultSize,
	Sort:      paging.DefaultSort,
	Direction: paging.Asc,
}

// parsePageRequest reads page, size, sort and direction from the query string, falling
// back to defaults for the ones that are absent. Non-numeric page or size is a type
// mismatch; an explicit size of 0 is rejected rather than defaulted.
func parsePageRequest(c *fiber.Ctx, defaults paging.PageRequest) (paging.PageRequest, error) {
	req := defaults

	intParam := func(name string, dst *int) error {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return models.ErrTypeMismatch.WithMessage(fmt.Sprintf("%s must be an integer", name))
		}
		*dst = v
		return nil
	}
	if err := intParam("page", &req.Page); err != nil {
		return req, err
	}
	if err := intParam("size", &req.Size); err != nil {
		return req, err
	}
	if sort := strings.TrimSpace(c.Query("sort")); sort != "" {
		req.Sort = sort
	}
	if dir := strings.TrimSpace(c.Query("direction")); dir != "" {
		req.Direction = dir
	}

	if err := req.Validate(); err != nil {
		return req, err
	}
	return req.Normalize(), nil
}

// publishCommentEvent fans a comment change out to the board's live feed. Failures are
// logged; the HTTP request has already succeeded.
func (s *Server) publishCommentEvent(ctx context.Context, eventType notifications.CommentEventType, actorID uint, view *models.CommentView) {
	if s.notifier == nil || view == nil {
		return
	}
	ev := notifications.CommentEvent{
		Type:    eventType,
		BoardID: view.BoardID,
		ActorID: actorID,
		Comment: view,
	}
	if err := s.notifier.PublishCommentEvent(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to publish comment event",
			slog.String("type", string(eventType)),
			slog.Uint64("board_id", uint64(view.BoardID)),
			slog.String("error", err.Error()),
		)
	}
}
