package server

import (
	"encoding/json"
	"testing"

	"onchat/internal/chain"
	"onchat/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextFrame pops one queued outbound frame without blocking.
func nextFrame(t *testing.T, client *notifications.Client) map[string]string {
	t.Helper()
	select {
	case data := <-client.Send:
		var frame map[string]string
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	default:
		t.Fatal("expected a queued frame")
		return nil
	}
}

func TestHandleEventStreamFrame(t *testing.T) {
	s := newHandlerTestServer(t)
	client, err := s.hub.Register(nil)
	require.NoError(t, err)
	defer s.hub.UnregisterClient(client)

	general := chain.HashSlug("general")

	t.Run("Subscribe Narrows And Acks", func(t *testing.T) {
		s.handleEventStreamFrame(client, []byte(`{"action":"subscribe","slug_hash":"`+general+`"}`))

		assert.Equal(t, 1, s.hub.SubscriptionCount(client))
		frame := nextFrame(t, client)
		assert.Equal(t, "subscribed", frame["type"])
		assert.Equal(t, general, frame["slug_hash"])
	})

	t.Run("Unsubscribe Drops The Filter", func(t *testing.T) {
		s.handleEventStreamFrame(client, []byte(`{"action":"unsubscribe","slug_hash":"`+general+`"}`))

		assert.Equal(t, 0, s.hub.SubscriptionCount(client))
		frame := nextFrame(t, client)
		assert.Equal(t, "unsubscribed", frame["type"])
	})

	t.Run("Malformed JSON Reports An Error", func(t *testing.T) {
		s.handleEventStreamFrame(client, []byte(`{not json`))
		frame := nextFrame(t, client)
		assert.Equal(t, "invalid frame", frame["error"])
	})

	t.Run("Bad Hash Reports An Error", func(t *testing.T) {
		s.handleEventStreamFrame(client, []byte(`{"action":"subscribe","slug_hash":"general"}`))
		frame := nextFrame(t, client)
		assert.Equal(t, "invalid slug_hash", frame["error"])
		assert.Equal(t, 0, s.hub.SubscriptionCount(client))
	})

	t.Run("Unknown Action Reports An Error", func(t *testing.T) {
		s.handleEventStreamFrame(client, []byte(`{"action":"mute","slug_hash":"`+general+`"}`))
		frame := nextFrame(t, client)
		assert.Equal(t, "unknown action", frame["error"])
	})
}
