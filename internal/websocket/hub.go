package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"bookreview-be/internal/model"
	"bookreview-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	clusterChannel  = "bookreview:notifications"
	broadcastTarget = "*"
)

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub tracks connected clients per user (multi-device) and fans notifications
// out to other instances over Redis pub/sub when a client is connected elsewhere.
type Hub struct {
	clients map[uuid.UUID][]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// instanceID lets an instance ignore its own Redis messages.
	instanceID string
	rdb        *redis.Client
	logger     logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		instanceID: uuid.NewString(),
		rdb:        rdb,
		logger:     log,
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Debug("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Debug("Hub", "User has no more connections", map[string]interface{}{"user_id": client.UserID})
	}
}

// ConnectedDevices is the number of local connections for userID.
func (h *Hub) ConnectedDevices(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Send pushes a notification to every device of userID, on this and other instances.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data, err := encode(notification)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode notification", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(userID, data)
	h.publish(userID.String(), data)
}

// Broadcast pushes a notification to every connected client.
func (h *Hub) Broadcast(notification model.Notification) {
	data, err := encode(notification)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode broadcast", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverAll(data)
	h.publish(broadcastTarget, data)
}

func encode(notification model.Notification) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userID] {
		h.offer(client, data)
	}
}

func (h *Hub) deliverAll(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for _, client := range clients {
			h.offer(client, data)
		}
	}
}

// offer never blocks: a client whose buffer is full misses the message and
// can recover it from GET /notifications.
func (h *Hub) offer(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"user_id": client.UserID})
	}
}

func (h *Hub) publish(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterMessage{Origin: h.instanceID, TargetUserID: target, Message: data})
	if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleClusterMessage([]byte(msg.Payload))
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Malformed cluster message", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceID {
		return
	}

	if payload.TargetUserID == broadcastTarget {
		h.deliverAll(payload.Message)
		return
	}
	uid, err := uuid.Parse(payload.TargetUserID)
	if err != nil {
		return
	}
	h.deliverLocal(uid, payload.Message)
}
