package server

import (
	"onchat/internal/models"
	"onchat/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ChannelListResponse pairs a page of channels with the registry total.
type ChannelListResponse struct {
	Channels []*models.Channel `json:"channels"`
	Total    int64             `json:"total"`
}

// CreateChannelRequest is the request body for channel registration.
type CreateChannelRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Name     string `json:"name" validate:"required,max=120"`
	ValueWei string `json:"value_wei"`
}

// CreateChannel handles POST /api/channels
// @Summary Register a channel
// @Description Registers a channel under the keccak hash of its slug, collects the creation fee from value_wei, refunds any excess, and enrolls the sender as owner and first member.
// @Tags channels
// @Accept json
// @Produce json
// @Param request body CreateChannelRequest true "Channel registration"
// @Success 201 {object} models.Channel
// @Failure 400 {object} models.ErrorResponse
// @Failure 402 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /channels [post]
func (s *Server) CreateChannel(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req CreateChannelRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	value, err := parseWei(req.ValueWei)
	if err != nil {
		return respondLedgerError(c, err)
	}

	channel, err := s.channels.CreateChannel(ctx, service.CreateChannelInput{
		Sender:   sender(c),
		Slug:     req.Slug,
		Name:     req.Name,
		ValueWei: value,
	})
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(channel)
}

// JoinChannel handles POST /api/channels/:slugHash/join
// @Summary Join a channel
// @Description Adds the sender to the channel's member roll. Joining is free and open to anyone not banned.
// @Tags channels
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Success 200 {object} models.Channel
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /channels/{slugHash}/join [post]
func (s *Server) JoinChannel(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}

	channel, err := s.channels.JoinChannel(ctx, slugHash, sender(c))
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(channel)
}

// LeaveChannel handles POST /api/channels/:slugHash/leave
// @Summary Leave a channel
// @Description Removes the sender from the member roll and drops any moderator grant. Owners cannot leave their own channel.
// @Tags channels
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /channels/{slugHash}/leave [post]
func (s *Server) LeaveChannel(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}

	if err := s.channels.LeaveChannel(ctx, slugHash, sender(c)); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Left channel"})
}

// GetLatestChannels handles GET /api/channels
// @Summary List channels
// @Description Lists registered channels newest first.
// @Tags channels
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} ChannelListResponse
// @Router /channels [get]
func (s *Server) GetLatestChannels(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 20)

	channels, err := s.channels.GetLatestChannels(ctx, page.Limit, page.Offset)
	if err != nil {
		return respondLedgerError(c, err)
	}
	total, err := s.channels.GetChannelCount(ctx)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(ChannelListResponse{Channels: channels, Total: total})
}

// GetChannel handles GET /api/channels/:slugHash
// @Summary Get channel detail
// @Description Fetches one channel by slug hash, including its plain slug and counters.
// @Tags channels
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Success 200 {object} models.Channel
// @Failure 404 {object} models.ErrorResponse
// @Router /channels/{slugHash} [get]
func (s *Server) GetChannel(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}

	channel, err := s.channels.GetChannel(ctx, slugHash)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(channel)
}

// GetChannelMembers handles GET /api/channels/:slugHash/members
// @Summary List channel members
// @Description Lists members in join order. Rejoining after an unban appends at the end.
// @Tags channels
// @Produce json
// @Param slugHash path string true "Channel slug hash"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.ChannelMember
// @Failure 404 {object} models.ErrorResponse
// @Router /channels/{slugHash}/members [get]
func (s *Server) GetChannelMembers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	members, err := s.channels.GetChannelMembers(ctx, slugHash, page.Limit, page.Offset)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(members)
}

// GetMemberStatus handles GET /api/channels/:slugHash/members/:user
func (s *Server) GetMemberStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	address, err := s.parseAddressParam(c, "user")
	if err != nil {
		return nil
	}

	isMember, err := s.channels.IsMember(ctx, slugHash, address)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"address": address, "is_member": isMember})
}

// GetUserChannels handles GET /api/users/:address/channels
// @Summary List a user's channels
// @Description Lists channels the address has joined, in join order, with the total joined count.
// @Tags users
// @Produce json
// @Param address path string true "Member address"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} ChannelListResponse
// @Router /users/{address}/channels [get]
func (s *Server) GetUserChannels(c *fiber.Ctx) error {
	ctx := c.UserContext()
	address, err := s.parseAddressParam(c, "address")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	channels, err := s.channels.GetUserChannels(ctx, address, page.Limit, page.Offset)
	if err != nil {
		return respondLedgerError(c, err)
	}
	total, err := s.channels.GetUserChannelCount(ctx, address)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(ChannelListResponse{Channels: channels, Total: total})
}

// GetOwnerBalance handles GET /api/users/:address/balance
func (s *Server) GetOwnerBalance(c *fiber.Ctx) error {
	ctx := c.UserContext()
	address, err := s.parseAddressParam(c, "address")
	if err != nil {
		return nil
	}

	balance, err := s.treasury.GetOwnerBalance(ctx, address)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{
		"address":     address,
		"balance_wei": balance.String(),
	})
}
