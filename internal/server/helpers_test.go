package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"onchat/internal/chain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- parsePagination ---

func paginationApp(defaultLimit int) *fiber.App {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, defaultLimit)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})
	return app
}

func paginationFor(t *testing.T, app *fiber.App, query string) (limit, offset float64) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/items"+query, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["limit"], body["offset"]
}

func TestParsePagination_Defaults(t *testing.T) {
	app := paginationApp(25)
	limit, offset := paginationFor(t, app, "")
	assert.Equal(t, float64(25), limit)
	assert.Equal(t, float64(0), offset)
}

func TestParsePagination_Custom(t *testing.T) {
	app := paginationApp(25)
	limit, offset := paginationFor(t, app, "?limit=10&offset=30")
	assert.Equal(t, float64(10), limit)
	assert.Equal(t, float64(30), offset)
}

func TestParsePagination_ClampsOversizedLimit(t *testing.T) {
	app := paginationApp(25)
	limit, _ := paginationFor(t, app, "?limit=5000")
	assert.Equal(t, float64(maxPaginationLimit), limit)
}

func TestParsePagination_RejectsNegativeValues(t *testing.T) {
	app := paginationApp(25)
	limit, offset := paginationFor(t, app, "?limit=-1&offset=-7")
	assert.Equal(t, float64(25), limit)
	assert.Equal(t, float64(0), offset)
}

// --- parseWei ---

func TestParseWei(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty means zero", "", "0", false},
		{"zero", "0", "0", false},
		{"plain wei", "2500000000000000", "2500000000000000", false},
		{"larger than uint64", "340282366920938463463374607431768211456", "340282366920938463463374607431768211456", false},
		{"decimal point", "0.0025", "", true},
		{"hex", "0x1234", "", true},
		{"negative", "-5", "", true},
		{"garbage", "lots", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, err := parseWei(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, wei.String())
		})
	}
}

// --- parseSlugHash ---

func TestParseSlugHash_CanonicalizesCase(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/channels/:slugHash", func(c *fiber.Ctx) error {
		slugHash, err := s.parseSlugHash(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"slug_hash": slugHash})
	})

	canonical := chain.HashSlug("general")
	upper := "0x" + strings.ToUpper(canonical[2:])
	req := httptest.NewRequest(http.MethodGet, "/channels/"+upper, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, chain.HashSlug("general"), body["slug_hash"])
}

func TestParseSlugHash_Invalid(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/channels/:slugHash", func(c *fiber.Ctx) error {
		_, err := s.parseSlugHash(c)
		if err != nil {
			return nil
		}
		return c.SendStatus(http.StatusOK)
	})

	for _, bad := range []string{"general", "0x1234", "zz"} {
		req := httptest.NewRequest(http.MethodGet, "/channels/"+bad, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		_ = resp.Body.Close()
	}
}

// --- parseMessageIndex ---

func TestParseMessageIndex(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/messages/:index", func(c *fiber.Ctx) error {
		index, err := s.parseMessageIndex(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"index": index})
	})

	t.Run("zero is a valid index", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/messages/0", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("negative rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/messages/-1", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("non-numeric rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/messages/first", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// --- parseAddressParam ---

func TestParseAddressParam_Checksums(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/users/:address", func(c *fiber.Ctx) error {
		addr, err := s.parseAddressParam(c, "address")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"address": addr})
	})

	lower := "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
	req := httptest.NewRequest(http.MethodGet, "/users/"+lower, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, aliceAddr, body["address"])
}

func TestParseAddressParam_Invalid(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/users/:address", func(c *fiber.Ctx) error {
		_, err := s.parseAddressParam(c, "address")
		if err != nil {
			return nil
		}
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
