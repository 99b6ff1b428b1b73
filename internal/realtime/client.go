package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/slotbook/backend/internal/catalog"
	"github.com/slotbook/backend/pkg/response"
)

// EventAvailability carries a models.SlotAvailability snapshot.
const EventAvailability = "availability"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // read-only public feed
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection watching one slot.
type Client struct {
	ID     string
	SlotID uuid.UUID
	hub    *Hub
	source AvailabilitySource
	conn   *websocket.Conn
	send   chan WSMessage
	logger *zap.Logger
}

// ServeWs handles GET /ws/availability?slot_id=. The first message is the
// current availability; later ones follow every committed change.
func ServeWs(hub *Hub, source AvailabilitySource, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		slotID, err := uuid.Parse(c.Query("slot_id"))
		if err != nil {
			response.BadRequest(c, "valid slot_id required")
			return
		}
		snapshot, err := source.Availability(c.Request.Context(), slotID)
		if errors.Is(err, catalog.ErrEventNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		if err != nil {
			logger.Error("load availability failed", zap.Error(err), zap.String("slot_id", slotID.String()))
			response.Internal(c, "failed to load availability")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:     uuid.New().String(),
			SlotID: slotID,
			hub:    hub,
			source: source,
			conn:   conn,
			send:   make(chan WSMessage, 16),
			logger: logger,
		}
		hub.Register(client)
		hub.SendToClient(client, EventAvailability, snapshot)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "refresh":
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			a, err := c.source.Availability(ctx, c.SlotID)
			cancel()
			if err != nil {
				c.logger.Warn("refresh availability failed", zap.Error(err), zap.String("slot_id", c.SlotID.String()))
				continue
			}
			c.hub.SendToClient(c, EventAvailability, a)
		default:
			// ignore
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
