package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"socioscope-be/internal/pkg/logger"
	"socioscope-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Hub struct {
	// Registered clients map: AnalystID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication; nil when running
	// single-instance.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.AnalystID] = append(h.clients[client.AnalystID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"analyst_id": client.AnalystID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.AnalystID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.AnalystID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.AnalystID]) == 0 {
					delete(h.clients, client.AnalystID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"analyst_id": client.AnalystID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a query lifecycle event to every device the analyst has
// connected, locally and (when redis is configured) on other instances.
func (h *Hub) Send(analystID uuid.UUID, event *events.QueryLifecycleEvent) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "query_lifecycle",
		"data": event,
	})

	h.mu.RLock()
	clients, localFound := h.clients[analystID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"analyst_id": analystID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_analyst_id": analystID.String(),
			"message":           data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and delivers to
	// whichever analysts it has locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetAnalystID string          `json:"target_analyst_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		uid, err := uuid.Parse(payload.TargetAnalystID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[uid]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
