package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains slot_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling: every instance subscribes to the
// slots its clients watch and fans Redis messages out locally.
type Hub struct {
	// slotID -> map[clientID]*Client
	slots    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per slot
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishSlotEvent(slotID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to slot channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeSlot(slotID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. Without Redis it broadcasts to local clients only.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		slots:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a slot room. The first watcher of a slot starts
// its Redis subscription; the round-trip runs without holding the hub lock.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	room, watched := h.slots[c.SlotID]
	if !watched {
		room = make(map[string]*Client)
		h.slots[c.SlotID] = room
	}
	room[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client watching slot", zap.String("client_id", c.ID), zap.String("slot_id", c.SlotID.String()))

	if !watched && h.redisSub != nil {
		h.subscribe(c.SlotID)
	}
}

func (h *Hub) subscribe(slotID uuid.UUID) {
	cancel, err := h.redisSub.SubscribeSlot(slotID, func(event string, payload []byte) {
		h.BroadcastToSlot(slotID, event, json.RawMessage(payload))
	})
	if err != nil {
		h.logger.Warn("redis subscribe failed", zap.Error(err), zap.String("slot_id", slotID.String()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// The room may have emptied, or a newer registration may have subscribed, meanwhile.
	if _, ok := h.slots[slotID]; !ok {
		cancel()
		return
	}
	if _, ok := h.subs[slotID]; ok {
		cancel()
		return
	}
	h.subs[slotID] = cancel
}

// Unregister removes a client from a slot room. Cancels Redis subscription when last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.slots[c.SlotID]; ok {
		if _, ok := m[c.ID]; ok {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.slots, c.SlotID)
			if cancel, ok := h.subs[c.SlotID]; ok {
				cancel()
				delete(h.subs, c.SlotID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left slot", zap.String("client_id", c.ID), zap.String("slot_id", c.SlotID.String()))
}

// BroadcastToSlot sends a message to all clients watching a slot (local only).
func (h *Hub) BroadcastToSlot(slotID uuid.UUID, event string, payload interface{}) {
	data, err := encode(payload)
	if err != nil {
		return
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.slots[slotID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish delivers an event to every instance. With Redis the subscriber callback
// performs the broadcast once for all instances (including this one).
func (h *Hub) Publish(slotID uuid.UUID, event string, payload interface{}) {
	data, err := encode(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		err := h.redis.PublishSlotEvent(slotID, event, data)
		if err == nil {
			return
		}
		h.logger.Warn("redis publish failed, broadcasting locally", zap.Error(err), zap.String("slot_id", slotID.String()))
	}
	h.BroadcastToSlot(slotID, event, json.RawMessage(data))
}

// SendToClient sends a message to a single client.
func (h *Hub) SendToClient(c *Client, event string, payload interface{}) {
	data, err := encode(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.slots[c.SlotID][c.ID]; !ok {
		return
	}
	select {
	case c.send <- WSMessage{Event: event, Data: data}:
	default:
	}
}

// WatcherCount returns the number of connected clients watching a slot.
func (h *Hub) WatcherCount(slotID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.slots[slotID])
}

func encode(payload interface{}) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(payload)
	}
}
