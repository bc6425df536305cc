package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/adzone/adserver/internal/auth"
	"github.com/adzone/adserver/internal/config"
	"github.com/adzone/adserver/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WSHub streams serving and admin events to connected admin dashboards.
type WSHub struct {
	cfg         *config.Config
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID]*websocket.Conn
}

func NewWSHub(cfg *config.Config, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:         cfg,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID]*websocket.Conn),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	for _, stream := range []string{events.StreamServing, events.StreamAdmin} {
		if err := h.subscriber.Subscribe(ctx, stream, h.broadcast); err != nil {
			return err
		}
	}
	return nil
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	// exclusive: a websocket conn allows one writer at a time
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("ws write failed", zap.String("session", id.String()), zap.Error(err))
		}
	}
}

// Connections returns the number of live sessions.
func (h *WSHub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// sessionFor authenticates a connection. Without ADMIN_KEY anyone may watch.
func (h *WSHub) sessionFor(token string) (uuid.UUID, error) {
	if h.cfg.AdminKey == "" {
		return uuid.New(), nil
	}
	claims, err := auth.ParseJWT(h.cfg.JWTSecret, token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.SessionID, nil
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	sid, err := h.sessionFor(conn.Query("token"))
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	h.mu.Lock()
	if old, ok := h.connections[sid]; ok {
		old.Close()
	}
	h.connections[sid] = conn
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.connections[sid] == conn {
			delete(h.connections, sid)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
