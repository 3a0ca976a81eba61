package server

import (
	"fmt"
	"net/http"
	"testing"

	"onchat/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountEventRoutes(app *fiber.App, s *Server) {
	app.Post("/api/channels", s.CreateChannel)
	app.Post("/api/channels/:slugHash/join", s.JoinChannel)
	app.Post("/api/channels/:slugHash/messages", s.SendMessage)
	app.Get("/api/fees/quote", s.QuoteMessageFee)
	app.Get("/api/events", s.GetEvents)
}

type eventPage struct {
	Events []*models.Event `json:"events"`
	Next   uint64          `json:"next"`
}

func TestEventLogOverHTTP(t *testing.T) {
	s := newHandlerTestServer(t)
	app := newSenderApp()
	mountEventRoutes(app, s)

	general := createTestChannel(t, app, aliceAddr, "general")
	join := doJSON(t, app, http.MethodPost, "/api/channels/"+general+"/join", bobAddr, nil)
	require.Equal(t, http.StatusOK, join.StatusCode)
	_ = join.Body.Close()

	sent := doJSON(t, app, http.MethodPost, "/api/channels/"+general+"/messages", bobAddr, map[string]string{
		"content":   "hello",
		"value_wei": quoteFee(t, app, "hello"),
	})
	require.Equal(t, http.StatusCreated, sent.StatusCode)
	_ = sent.Body.Close()

	createTestChannel(t, app, aliceAddr, "random")

	wantTypes := []models.EventType{
		models.EventChannelCreated,
		models.EventChannelJoined,
		models.EventMessageSent,
		models.EventChannelCreated,
	}

	t.Run("Log Replays In Insertion Order", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/events", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page eventPage
		decodeBody(t, resp, &page)
		require.Len(t, page.Events, len(wantTypes))
		for i, event := range page.Events {
			assert.Equal(t, uint64(i+1), event.ID)
			assert.Equal(t, wantTypes[i], event.Type)
		}
		assert.Equal(t, uint64(4), page.Next)
	})

	t.Run("Cursor Resumes Past Seen Events", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/events?after=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page eventPage
		decodeBody(t, resp, &page)
		require.Len(t, page.Events, 2)
		assert.Equal(t, models.EventMessageSent, page.Events[0].Type)
		assert.Equal(t, models.EventChannelCreated, page.Events[1].Type)
		assert.Equal(t, uint64(4), page.Next)
	})

	t.Run("Exhausted Cursor Echoes Back", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/events?after=4", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page eventPage
		decodeBody(t, resp, &page)
		assert.Empty(t, page.Events)
		assert.Equal(t, uint64(4), page.Next)
	})

	t.Run("Limit Caps The Page", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/events?limit=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page eventPage
		decodeBody(t, resp, &page)
		require.Len(t, page.Events, 2)
		assert.Equal(t, uint64(2), page.Next)
	})

	t.Run("Channel Filter Narrows The Stream", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events?slug_hash=%s", general), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page eventPage
		decodeBody(t, resp, &page)
		require.Len(t, page.Events, 3)
		for _, event := range page.Events {
			assert.Equal(t, general, event.SlugHash)
		}
	})

	t.Run("Negative Cursor Is Bad Request", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/events?after=-1", "", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeInvalidParams, errorCode(t, resp))
	})

	t.Run("Malformed Channel Filter Is Bad Request", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/events?slug_hash=nothex", "", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeInvalidParams, errorCode(t, resp))
	})
}
