package server

import (
	"fmt"
	"net/http"
	"testing"

	"onchat/internal/chain"
	"onchat/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountMessageRoutes(app *fiber.App, s *Server) {
	app.Post("/api/channels", s.CreateChannel)
	app.Post("/api/channels/:slugHash/join", s.JoinChannel)
	app.Post("/api/channels/:slugHash/messages", s.SendMessage)
	app.Post("/api/channels/:slugHash/messages/:index/hide", s.HideMessage)
	app.Post("/api/channels/:slugHash/messages/:index/unhide", s.UnhideMessage)
	app.Post("/api/channels/:slugHash/moderators", s.AddModerator)
	app.Get("/api/channels/:slugHash/messages/range", s.GetMessagesRange)
	app.Get("/api/channels/:slugHash/messages", s.GetLatestMessages)
	app.Get("/api/fees/quote", s.QuoteMessageFee)
}

// createTestChannel registers a channel and returns its slug hash.
func createTestChannel(t *testing.T, app *fiber.App, owner, slug string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/channels", owner, CreateChannelRequest{
		Slug:     slug,
		Name:     slug,
		ValueWei: creationFeeWei,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
	return chain.HashSlug(slug)
}

// quoteFee asks the fee endpoint to price a message body.
func quoteFee(t *testing.T, app *fiber.App, content string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/fees/quote?bytes=%d", len(content)), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var quote struct {
		FeeWei string `json:"fee_wei"`
	}
	decodeBody(t, resp, &quote)
	return quote.FeeWei
}

func TestSendMessageOverHTTP(t *testing.T) {
	s := newHandlerTestServer(t)
	app := newSenderApp()
	mountMessageRoutes(app, s)

	slugHash := createTestChannel(t, app, aliceAddr, "general")

	t.Run("Indexes Assign In Send Order", func(t *testing.T) {
		for i, content := range []string{"first", "second"} {
			resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages", aliceAddr, fiber.Map{
				"content":   content,
				"value_wei": quoteFee(t, app, content),
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			var message models.Message
			decodeBody(t, resp, &message)
			assert.Equal(t, uint64(i), message.MessageIndex)
			assert.Equal(t, content, message.Content)
			assert.Equal(t, aliceAddr, message.Sender)
			assert.False(t, message.IsHidden)
		}
	})

	t.Run("Non-Member Cannot Post", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages", carolAddr, fiber.Map{
			"content":   "hi",
			"value_wei": quoteFee(t, app, "hi"),
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeNotMember, errorCode(t, resp))
	})

	t.Run("Underpayment Rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages", aliceAddr, fiber.Map{
			"content":   "cheap",
			"value_wei": "1",
		})
		require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
		assert.Equal(t, models.CodeInsufficientPayment, errorCode(t, resp))
	})

	t.Run("Unknown Channel Is Not Found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+chain.HashSlug("missing")+"/messages", aliceAddr, fiber.Map{
			"content":   "hi",
			"value_wei": quoteFee(t, app, "hi"),
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestModerationTogglesVisibilityOverHTTP(t *testing.T) {
	s := newHandlerTestServer(t)
	app := newSenderApp()
	mountMessageRoutes(app, s)

	slugHash := createTestChannel(t, app, aliceAddr, "general")

	joinResp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/join", bobAddr, nil)
	require.Equal(t, http.StatusOK, joinResp.StatusCode)
	_ = joinResp.Body.Close()

	sendResp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages", bobAddr, fiber.Map{
		"content":   "spam",
		"value_wei": quoteFee(t, app, "spam"),
	})
	require.Equal(t, http.StatusCreated, sendResp.StatusCode)
	_ = sendResp.Body.Close()

	t.Run("Plain Member Cannot Hide", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages/0/hide", bobAddr, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeNotChannelOwnerOrModerator, errorCode(t, resp))
	})

	t.Run("Owner Hides And Content Survives", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages/0/hide", aliceAddr, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var message models.Message
		decodeBody(t, resp, &message)
		assert.True(t, message.IsHidden)
		assert.Equal(t, "spam", message.Content)
	})

	t.Run("Granted Moderator Unhides", func(t *testing.T) {
		grant := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/moderators", aliceAddr, ModerationTargetRequest{User: bobAddr})
		require.Equal(t, http.StatusOK, grant.StatusCode)
		_ = grant.Body.Close()

		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages/0/unhide", bobAddr, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var message models.Message
		decodeBody(t, resp, &message)
		assert.False(t, message.IsHidden)
	})

	t.Run("Unknown Index Is Not Found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages/99/hide", aliceAddr, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, models.CodeMessageNotFound, errorCode(t, resp))
	})

	t.Run("Malformed Index Is Bad Request", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages/abc/hide", aliceAddr, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMessageReadsOverHTTP(t *testing.T) {
	s := newHandlerTestServer(t)
	app := newSenderApp()
	mountMessageRoutes(app, s)

	slugHash := createTestChannel(t, app, aliceAddr, "general")

	for _, content := range []string{"zero", "one", "two"} {
		resp := doJSON(t, app, http.MethodPost, "/api/channels/"+slugHash+"/messages", aliceAddr, fiber.Map{
			"content":   content,
			"value_wei": quoteFee(t, app, content),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	t.Run("Latest Is Newest First With Total", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/channels/"+slugHash+"/messages?limit=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listing MessageListResponse
		decodeBody(t, resp, &listing)
		require.Len(t, listing.Messages, 2)
		assert.Equal(t, uint64(3), listing.Total)
		assert.Equal(t, "two", listing.Messages[0].Content)
		assert.Equal(t, "one", listing.Messages[1].Content)
	})

	t.Run("Range Is Chronological And Half-Open", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/channels/"+slugHash+"/messages/range?start=0&end=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listing MessageListResponse
		decodeBody(t, resp, &listing)
		require.Len(t, listing.Messages, 2)
		assert.Equal(t, "zero", listing.Messages[0].Content)
		assert.Equal(t, "one", listing.Messages[1].Content)
	})

	t.Run("Inverted Range Is Empty", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/channels/"+slugHash+"/messages/range?start=2&end=1", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listing MessageListResponse
		decodeBody(t, resp, &listing)
		assert.Empty(t, listing.Messages)
	})

	t.Run("Quote Prices By Byte Length", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/fees/quote?bytes=10", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var quote struct {
			ContentBytes int    `json:"content_bytes"`
			FeeWei       string `json:"fee_wei"`
		}
		decodeBody(t, resp, &quote)
		assert.Equal(t, 10, quote.ContentBytes)
		// base 0.00001 ether + 10 bytes at 0.0000002 ether
		assert.Equal(t, "12000000000000", quote.FeeWei)
	})

	t.Run("Negative Quote Is Bad Request", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/fees/quote?bytes=-1", "", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
