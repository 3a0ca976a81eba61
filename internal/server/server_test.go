package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"onchat/internal/config"
	"onchat/internal/models"
	"onchat/internal/notifications"
	"onchat/internal/payout"
	"onchat/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Well-known dev-chain addresses used across the handler tests.
const (
	adminAddr    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	treasuryAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	aliceAddr    = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	bobAddr      = "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
	carolAddr    = "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"
)

// Wei equivalents of the seeded fee schedule (0.0025 / 0.00001 / 0.0000002
// ether).
const (
	creationFeeWei    = "2500000000000000"
	messageFeeBaseWei = "10000000000000"
	messagePerByteWei = "200000000000"
)

// senderHeader lets tests pick the authenticated wallet per request without
// producing real signatures. The signature middleware itself is covered in
// security_test.go.
const senderHeader = "X-Test-Sender"

func setupServerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Channel{},
		&models.ChannelMember{},
		&models.ChannelModerator{},
		&models.ChannelBan{},
		&models.Message{},
		&models.OwnerBalance{},
		&models.LedgerState{},
		&models.Event{},
		&models.Payout{},
	))
	require.NoError(t, service.SeedLedgerState(context.Background(), db, &config.Config{
		AdminAddress:          adminAddr,
		TreasuryWallet:        treasuryAddr,
		ChannelCreationFeeEth: "0.0025",
		MessageFeeBaseEth:     "0.00001",
		MessageFeePerByteEth:  "0.0000002",
	}))
	return db
}

// newHandlerTestServer builds a Server around an in-memory database without
// touching the process-wide Prometheus registry, so every test file can have
// its own instance.
func newHandlerTestServer(t *testing.T) *Server {
	t.Helper()
	db := setupServerTestDB(t)

	notifier := notifications.NewNotifier(nil)
	hub := notifications.NewHub(notifier)
	transferer := payout.NewRecorder()

	return &Server{
		config:     &config.Config{SignatureTTLSeconds: 300},
		db:         db,
		notifier:   notifier,
		hub:        hub,
		channels:   service.NewChannelService(db, transferer, hub),
		messages:   service.NewMessageService(db, transferer, hub),
		moderation: service.NewModerationService(db, hub),
		treasury:   service.NewTreasuryService(db, transferer, hub),
		events:     service.NewEventService(db),
	}
}

// newSenderApp wraps a fiber app that reads the authenticated sender from a
// test header, standing in for the signature middleware.
func newSenderApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if addr := c.Get(senderHeader); addr != "" {
			c.Locals("sender", addr)
		}
		return c.Next()
	})
	return app
}

// doJSON performs one request against the app with an optional JSON body and
// sender address.
func doJSON(t *testing.T, app *fiber.App, method, path, from string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if from != "" {
		req.Header.Set(senderHeader, from)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody unmarshals the response body into out and closes it.
func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

// errorCode extracts the machine-readable code from an error envelope.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var envelope models.ErrorResponse
	decodeBody(t, resp, &envelope)
	return envelope.Code
}
