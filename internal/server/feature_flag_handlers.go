package server

import (
	"onchat/internal/chain"
	"onchat/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/flags
// @Summary Feature flag evaluation
// @Description Returns the configured flags and their evaluated state for a wallet. Percentage rollouts are deterministic per wallet; without an address only boolean flags evaluate.
// @Tags flags
// @Produce json
// @Param address query string false "Wallet to evaluate rollouts for"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	address := c.Query("address")
	if address != "" {
		normalized, err := chain.NormalizeAddress(address)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidParamsError("ADDRESS: "+err.Error()))
		}
		address = normalized
	}

	if s.flags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.flags.Raw(),
		"evaluated": s.flags.Snapshot(address),
	})
}
