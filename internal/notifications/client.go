package notifications

import (
	"log/slog"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1024 // subscribers only send control frames
	sendBufferSize = 64
)

var droppedNotice = []byte(`{"type":"events_dropped","reason":"buffer_full"}`)

// Client is one websocket subscriber of a board feed. The hub owns send and closes it
// when the client is unregistered.
type Client struct {
	UserID  uint
	BoardID uint

	hub  *BoardHub
	conn *websocket.Conn
	send chan []byte
}

func newClient(hub *BoardHub, conn *websocket.Conn, userID, boardID uint) *Client {
	return &Client{
		UserID:  userID,
		BoardID: boardID,
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
	}
}

// Serve writes queued events to the connection until the peer leaves or the hub drops
// the client, then unregisters it. It blocks for the life of the connection.
func (c *Client) Serve() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop()
	c.hub.UnregisterClient(c)
	<-done
}

// readLoop only exists to process pong and close frames.
func (c *Client) readLoop() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			middleware.Logger.Warn("Board feed read failed",
				slog.Uint64("user_id", uint64(c.UserID)),
				slog.Uint64("board_id", uint64(c.BoardID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}
}

// writeLoop closes the connection when it returns, which also ends readLoop.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		frameType, payload := websocket.PingMessage, []byte(nil)
		select {
		case msg, open := <-c.send:
			if !open {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			frameType, payload = websocket.TextMessage, msg
		case <-ping.C:
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(frameType, payload); err != nil {
			return
		}
	}
}

// trySend queues msg without blocking. When the buffer is full the event is dropped and
// the subscriber is told so it can re-fetch the thread.
func (c *Client) trySend(msg []byte) {
	defer func() {
		// send was closed by a concurrent unregister.
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.send <- msg:
		return
	default:
	}
	observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
	select {
	case c.send <- droppedNotice:
	default:
	}
}
