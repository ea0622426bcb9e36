package stream

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans session snapshots out to every UI client watching a user. When a
// redis client is present, events are also published so other gateway
// instances can forward them. Published payloads carry this instance's id so
// the subscription loop can drop its own publishes instead of delivering
// them to local watchers a second time.
type Hub struct {
	id      string
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	UserUID string
	Send    chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		id:      uuid.NewString(),
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(userUID string) *Client {
	client := &Client{
		UserUID: userUID,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userUID] == nil {
		h.clients[userUID] = map[*Client]struct{}{}
	}
	h.clients[userUID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if watchers, ok := h.clients[client.UserUID]; ok {
		delete(watchers, client)
		if len(watchers) == 0 {
			delete(h.clients, client.UserUID)
		}
	}
	close(client.Send)
}

// Broadcast delivers a payload to every local watcher of userUID; slow
// watchers are skipped rather than blocked on. The read lock is held across
// the sends so Unregister cannot close a channel mid-loop.
func (h *Hub) Broadcast(userUID string, payload []byte) {
	h.deliverLocal(userUID, payload)

	if h.redis != nil {
		envelope := h.id + "|" + string(payload)
		err := h.redis.Publish(context.Background(), redisChannel(userUID), envelope).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) deliverLocal(userUID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userUID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "session:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		origin, payload, ok := strings.Cut(msg.Payload, "|")
		if !ok || origin == h.id {
			// own publish, already delivered locally
			continue
		}
		h.deliverLocal(userUIDFromChannel(msg.Channel), []byte(payload))
	}
}

func redisChannel(userUID string) string {
	return "session:" + userUID + ":events"
}

func userUIDFromChannel(ch string) string {
	// session:{uid}:events
	const prefix = "session:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
