package server

import (
	"encoding/json"
	"log"

	"onchat/internal/chain"
	"onchat/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsSubscribeFrame is the only client-to-server frame the event stream
// accepts. Connections start on the firehose; the first subscribe narrows
// delivery to the named channels (protocol-wide events always come through).
type wsSubscribeFrame struct {
	Action   string `json:"action"` // "subscribe" or "unsubscribe"
	SlugHash string `json:"slug_hash"`
}

// WebSocketEventsHandler handles WebSocket connections for the live event stream
func (s *Server) WebSocketEventsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client, err := s.hub.Register(conn)
		if err != nil {
			log.Printf("WebSocket events: registration refused: %v", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = s.handleEventStreamFrame

		// Tell the client its stream is live before any event arrives.
		welcome, _ := json.Marshal(fiber.Map{
			"type":      "connected",
			"client_id": client.ID,
		})
		client.TrySend(welcome)

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}

// handleEventStreamFrame processes one inbound subscribe/unsubscribe frame.
func (s *Server) handleEventStreamFrame(c *notifications.Client, message []byte) {
	var frame wsSubscribeFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.TrySend([]byte(`{"error":"invalid frame"}`))
		return
	}

	slugHash, err := chain.NormalizeSlugHash(frame.SlugHash)
	if err != nil {
		c.TrySend([]byte(`{"error":"invalid slug_hash"}`))
		return
	}

	switch frame.Action {
	case "subscribe":
		s.hub.Subscribe(c, slugHash)
		ack, _ := json.Marshal(fiber.Map{
			"type":      "subscribed",
			"slug_hash": slugHash,
		})
		c.TrySend(ack)
	case "unsubscribe":
		s.hub.Unsubscribe(c, slugHash)
		ack, _ := json.Marshal(fiber.Map{
			"type":      "unsubscribed",
			"slug_hash": slugHash,
		})
		c.TrySend(ack)
	default:
		c.TrySend([]byte(`{"error":"unknown action"}`))
	}
}
