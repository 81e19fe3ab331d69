package server

import (
	"log/slog"

	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// upgradeBoardFeed rejects plain HTTP requests and feeds for boards that do not exist
// before the connection is upgraded.
func (s *Server) upgradeBoardFeed(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.ErrInvalidArgument.WithMessage("WebSocket upgrade required"))
	}
	userID, _ := c.Locals("userID").(uint)
	if s.boardHub == nil || !s.featureFlags.Enabled(featureflags.LiveFeed, userID) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.ErrInternalServer.WithMessage("Live comment feed is unavailable"))
	}
	boardID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.boardService.GetBoard(c.UserContext(), boardID); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	c.Locals("boardID", boardID)
	return c.Next()
}

// BoardFeedHandler streams comment events of one board to the client. Frames sent by the
// client are ignored.
// @Summary Live comment feed of a board
// @Tags comments
// @Param id path int true "Board ID"
// @Param token query string true "Access token"
// @Router /ws/boards/{id} [get]
func (s *Server) BoardFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userID, _ := conn.Locals("userID").(uint)
		boardID, _ := conn.Locals("boardID").(uint)

		client, err := s.boardHub.Register(userID, boardID, conn)
		if err != nil {
			middleware.Logger.Warn("Board feed registration failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.Uint64("board_id", uint64(boardID)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","reason":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.Serve()
	})
}
