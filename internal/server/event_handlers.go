package server

import (
	"onchat/internal/chain"
	"onchat/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetEvents handles GET /api/events?after&limit&slug_hash
// Pages the durable event log forward by ID cursor, oldest first, so
// clients can replay the full history or resume a dropped live stream.
func (s *Server) GetEvents(c *fiber.Ctx) error {
	ctx := c.UserContext()

	after := c.QueryInt("after", 0)
	if after < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("AFTER: must be a non-negative integer"))
	}
	page := parsePagination(c, 50)

	slugHash := c.Query("slug_hash")
	if slugHash != "" {
		normalized, err := chain.NormalizeSlugHash(slugHash)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidParamsError("SLUG_HASH: "+err.Error()))
		}
		slugHash = normalized
	}

	events, err := s.events.ListEvents(ctx, uint64(after), page.Limit, slugHash)
	if err != nil {
		return respondLedgerError(c, err)
	}

	next := uint64(after)
	if len(events) > 0 {
		next = events[len(events)-1].ID
	}

	return c.JSON(fiber.Map{
		"events": events,
		"next":   next,
	})
}
