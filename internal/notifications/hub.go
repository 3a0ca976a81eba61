// Package notifications delivers ledger events to live WebSocket
// subscribers, locally and across instances via Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"onchat/internal/models"
	"onchat/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Max total connections per instance.
const maxTotalConns = 10000

// Hub fans ledger events out to connected WebSocket clients. A client
// starts on the firehose (every event); subscribing to one or more
// channels narrows it to those channels plus protocol-wide events,
// which have no channel and always reach everyone.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	// filters maps a client to the slugHashes it asked for. A client
	// with no entry is on the firehose.
	filters map[*Client]map[string]struct{}

	notifier *Notifier
	logger   *observability.WSLogger

	shutdown chan struct{}
	once     sync.Once
}

// NewHub creates a Hub. A nil notifier (or one without Redis) keeps
// delivery local to this instance.
func NewHub(notifier *Notifier) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		filters:  make(map[*Client]map[string]struct{}),
		notifier: notifier,
		logger:   observability.NewWSLogger("events"),
		shutdown: make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "events hub" }

// Register adds a connection and returns its Client, or an error when
// the instance is at capacity.
func (h *Hub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if len(h.clients) >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}
	client := NewClient(h, conn)
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	observability.WebSocketConnectionsTotal.Inc()
	observability.RecordWebSocketEvent("connect")
	h.logger.LogConnect(context.Background(), client.ID)
	return client, nil
}

// UnregisterClient removes a connection and its subscriptions.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	delete(h.filters, client)
	h.mu.Unlock()

	if existed {
		observability.WebSocketConnectionsTotal.Dec()
		observability.RecordWebSocketEvent("disconnect")
		h.logger.LogDisconnect(context.Background(), client.ID, "unregistered")
	}
}

// Subscribe narrows a client's stream to the given channel. The first
// subscription takes the client off the firehose.
func (h *Hub) Subscribe(client *Client, slugHash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	if h.filters[client] == nil {
		h.filters[client] = make(map[string]struct{})
	}
	h.filters[client][slugHash] = struct{}{}
}

// Unsubscribe drops one channel from a client's filter. A client whose
// filter empties out keeps receiving protocol-wide events only; it does
// not fall back to the firehose.
func (h *Hub) Unsubscribe(client *Client, slugHash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if filter, ok := h.filters[client]; ok {
		delete(filter, slugHash)
	}
}

// PublishEvent delivers a committed ledger event to subscribers. With
// Redis wired it goes through pub/sub so every instance (this one
// included) delivers it; otherwise it fans out locally. Called by the
// services after commit, never inside a transaction.
func (h *Hub) PublishEvent(event *models.Event) {
	if event == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.LogError(context.Background(), "", err, "marshal")
		return
	}

	if h.notifier.Enabled() {
		err := h.notifier.PublishEvent(context.Background(), string(data))
		if err == nil {
			return
		}
		// Redis is down; local clients still get the event.
		h.logger.LogError(context.Background(), "", err, "publish")
	}
	h.broadcast(event.SlugHash, data)
}

// StartWiring subscribes the hub to the Redis event channel so events
// published by any instance reach this instance's clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartEventSubscriber(ctx, func(_ string, payload string) {
		var event models.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			h.logger.LogError(ctx, "", err, "decode")
			return
		}
		h.broadcast(event.SlugHash, []byte(payload))
	})
}

// broadcast fans one serialized event out to every client whose filter
// accepts it.
func (h *Hub) broadcast(slugHash string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		filter, filtered := h.filters[client]
		if filtered && slugHash != "" {
			if _, ok := filter[slugHash]; !ok {
				continue
			}
		}
		client.TrySend(data)
	}
	observability.RecordWebSocketEvent("broadcast")
}

// SubscriptionCount reports how many channels a client has narrowed to.
// Zero means the firehose unless the client subscribed and then dropped
// everything.
func (h *Hub) SubscriptionCount(client *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.filters[client])
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection gracefully.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.once.Do(func() { close(h.shutdown) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")); err != nil {
			h.logger.LogError(ctx, client.ID, err, "shutdown")
		}
		if err := client.Conn.Close(); err != nil {
			h.logger.LogError(ctx, client.ID, err, "close")
		}
	}
	h.clients = make(map[*Client]struct{})
	h.filters = make(map[*Client]map[string]struct{})
	h.logger.LogLifecycle(ctx, "shutdown", nil)
	return nil
}
