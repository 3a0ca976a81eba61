package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"onchat/internal/config"
	"onchat/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func middlewareTestApp() *fiber.App {
	srv := &Server{config: &config.Config{}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	return app
}

func TestSetupMiddleware_RecoversFromPanics(t *testing.T) {
	app := middlewareTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("handler exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSetupMiddleware_AssignsRequestIDs(t *testing.T) {
	app := middlewareTestApp()
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestSetupMiddleware_PropagatesRequestIDToContext(t *testing.T) {
	app := middlewareTestApp()

	var seen string
	app.Get("/ctx", func(c *fiber.Ctx) error {
		seen, _ = c.UserContext().Value(middleware.RequestIDKey).(string)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	// The context carries the same ID the response header reports, so log
	// lines written in the service layer correlate with the HTTP trace.
	assert.NotEmpty(t, seen)
	assert.Equal(t, resp.Header.Get(fiber.HeaderXRequestID), seen)
}
