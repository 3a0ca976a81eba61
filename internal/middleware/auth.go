// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"fmt"
	"strconv"
	"time"

	"onchat/internal/chain"
	"onchat/internal/config"
	"onchat/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Request headers carrying the wallet authorization of a write.
const (
	HeaderAddress   = "X-Onchat-Address"
	HeaderSignature = "X-Onchat-Signature"
	HeaderTimestamp = "X-Onchat-Timestamp"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// SignatureRequired enforces wallet-signature authentication for write routes.
//
// The caller signs the text
//
//	onchat:<METHOD>:<path>:<unix-timestamp>:<keccak256(body)>
//
// with personal_sign and sends address, signature, and timestamp in request
// headers. The middleware recovers the signer, checks it matches the declared
// address, and rejects stale timestamps. On success the checksummed sender
// address is stored in c.Locals("sender").
func SignatureRequired(c *fiber.Ctx) error {
	address := c.Get(HeaderAddress)
	if address == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(HeaderAddress+" header required"))
	}
	if !chain.IsValidAddress(address) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("invalid sender address"))
	}

	signature := c.Get(HeaderSignature)
	if signature == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(HeaderSignature+" header required"))
	}

	tsHeader := c.Get(HeaderTimestamp)
	if tsHeader == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(HeaderTimestamp+" header required"))
	}
	timestamp, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("invalid signature timestamp"))
	}

	ttl := int64(cfg.SignatureTTLSeconds)
	if age := time.Now().Unix() - timestamp; age > ttl || age < -ttl {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(fmt.Sprintf("signature timestamp outside the %ds window", ttl)))
	}

	// The signed text binds method, path, timestamp, and body so a captured
	// signature cannot be replayed against a different route or payload.
	text := chain.SigningText(c.Method(), c.Path(), timestamp, chain.HashBody(c.Body()))
	signer, err := chain.RecoverSigner(text, signature)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("signature recovery failed"))
	}
	if !chain.SameAddress(signer, address) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("signature does not match sender address"))
	}

	// Validity was checked above, so normalization cannot fail here.
	sender, _ := chain.NormalizeAddress(address)
	c.Locals("sender", sender)

	return c.Next()
}
