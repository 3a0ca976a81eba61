package server

import (
	"onchat/internal/chain"
	"onchat/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ModerationTargetRequest names the address a ban or moderator grant acts on.
type ModerationTargetRequest struct {
	User string `json:"user" validate:"required"`
}

// parseTargetBody reads the target address from the request body.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseTargetBody(c *fiber.Ctx) (string, error) {
	var req ModerationTargetRequest
	if err := parseBody(c, &req); err != nil {
		return "", errResponseWritten
	}
	target, err := chain.NormalizeAddress(req.User)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("USER: "+err.Error()))
		return "", errResponseWritten
	}
	return target, nil
}

// BanUser handles POST /api/channels/:slugHash/bans
// @Summary Ban a user from a channel
// @Description Bans the target address. Membership and any moderator grant are stripped in the same transaction. Only the owner or a moderator may ban; the owner can never be banned.
// @Tags moderation
// @Accept json
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Param request body ModerationTargetRequest true "Ban target"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /channels/{slugHash}/bans [post]
func (s *Server) BanUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	target, err := s.parseTargetBody(c)
	if err != nil {
		return nil
	}

	if err := s.moderation.BanUser(ctx, slugHash, target, sender(c)); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User banned"})
}

// UnbanUser handles DELETE /api/channels/:slugHash/bans/:user
// @Summary Unban a user
// @Description Lifts the ban. Membership is NOT restored; the user must rejoin and lands at the end of the member roll.
// @Tags moderation
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Param user path string true "Banned address"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /channels/{slugHash}/bans/{user} [delete]
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	target, err := s.parseAddressParam(c, "user")
	if err != nil {
		return nil
	}

	if err := s.moderation.UnbanUser(ctx, slugHash, target, sender(c)); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User unbanned"})
}

// AddModerator handles POST /api/channels/:slugHash/moderators
// @Summary Grant moderator rights
// @Description Promotes a member to moderator. Owner only; the target must already be a member.
// @Tags moderation
// @Accept json
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Param request body ModerationTargetRequest true "Moderator target"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /channels/{slugHash}/moderators [post]
func (s *Server) AddModerator(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	target, err := s.parseTargetBody(c)
	if err != nil {
		return nil
	}

	if err := s.moderation.AddModerator(ctx, slugHash, target, sender(c)); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Moderator added"})
}

// RemoveModerator handles DELETE /api/channels/:slugHash/moderators/:user
// @Summary Revoke moderator rights
// @Description Demotes a moderator back to plain member. Owner only.
// @Tags moderation
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Param user path string true "Moderator address"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /channels/{slugHash}/moderators/{user} [delete]
func (s *Server) RemoveModerator(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	target, err := s.parseAddressParam(c, "user")
	if err != nil {
		return nil
	}

	if err := s.moderation.RemoveModerator(ctx, slugHash, target, sender(c)); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Moderator removed"})
}

// GetChannelModerators handles GET /api/channels/:slugHash/moderators
func (s *Server) GetChannelModerators(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	moderators, err := s.moderation.GetChannelModerators(ctx, slugHash, page.Limit, page.Offset)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(moderators)
}

// GetBannedUsers handles GET /api/channels/:slugHash/bans
func (s *Server) GetBannedUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	bans, err := s.moderation.GetBannedUsers(ctx, slugHash, page.Limit, page.Offset)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(bans)
}

// GetModeratorStatus handles GET /api/channels/:slugHash/moderators/:user
func (s *Server) GetModeratorStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	address, err := s.parseAddressParam(c, "user")
	if err != nil {
		return nil
	}

	isModerator, err := s.moderation.IsModerator(ctx, slugHash, address)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"address": address, "is_moderator": isModerator})
}

// GetBanStatus handles GET /api/channels/:slugHash/bans/:user
func (s *Server) GetBanStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	address, err := s.parseAddressParam(c, "user")
	if err != nil {
		return nil
	}

	isBanned, err := s.moderation.IsBanned(ctx, slugHash, address)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"address": address, "is_banned": isBanned})
}
