package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerBoard = 500
	maxTotalConns    = 10000
)

var (
	ErrBoardFeedFull   = errors.New("board feed connection limit reached")
	ErrServerFull      = errors.New("server connection limit reached")
	ErrHubShuttingDown = errors.New("board hub is shutting down")
)

// BoardHub maps boardID -> subscribed clients.
type BoardHub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
	log        *observability.WSLogger
}

func NewBoardHub() *BoardHub {
	return &BoardHub{
		conns: make(map[uint]map[*Client]struct{}),
		log:   observability.NewWSLogger("board feed"),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *BoardHub) Name() string { return "board feed" }

// Register subscribes conn to boardID. conn may be nil in tests.
func (h *BoardHub) Register(userID, boardID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubShuttingDown
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}
	m, ok := h.conns[boardID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[boardID] = m
	}
	if len(m) >= maxConnsPerBoard {
		return nil, ErrBoardFeedFull
	}

	client := newClient(h, conn, userID, boardID)
	m[client] = struct{}{}
	h.totalConns++
	observability.BoardFeedSubscribers.Inc()
	h.log.LogConnect(context.Background(), userID, boardID)
	return client, nil
}

// UnregisterClient removes the client and closes its send channel. Safe to call twice.
func (h *BoardHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.BoardID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.BoardID)
	}
	h.totalConns--
	close(client.send)
	observability.BoardFeedSubscribers.Dec()
	h.log.LogDisconnect(context.Background(), client.UserID, client.BoardID, "unregistered")
}

// Broadcast sends message to every subscriber of boardID.
func (h *BoardHub) Broadcast(boardID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[boardID] {
		c.trySend(message)
	}
}

// Subscribers returns the number of clients following boardID.
func (h *BoardHub) Subscribers(boardID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[boardID])
}

// StartWiring forwards every board comment event from Redis to the matching subscribers.
func (h *BoardHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		boardID, err := ParseBoardCommentsChannel(channel)
		if err != nil {
			h.log.LogError(ctx, 0, err, "route")
			return
		}
		h.Broadcast(boardID, []byte(payload))
	})
}

// Shutdown closes every subscriber. Later Register calls fail.
func (h *BoardHub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for boardID, clients := range h.conns {
		for client := range clients {
			if client.conn != nil {
				_ = client.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"),
					time.Now().Add(writeWait))
			}
			close(client.send)
			observability.BoardFeedSubscribers.Dec()
		}
		delete(h.conns, boardID)
	}
	h.totalConns = 0
	h.log.LogLifecycle(ctx, "shutdown", nil)
	return nil
}
