package server

import (
	"onchat/internal/models"
	"onchat/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MessageListResponse pairs a page of messages with the channel's total count.
type MessageListResponse struct {
	Messages []*models.Message `json:"messages"`
	Total    uint64            `json:"total"`
}

// SendMessageRequest is the request body for appending a message.
type SendMessageRequest struct {
	Content  string `json:"content" validate:"required"`
	ValueWei string `json:"value_wei"`
}

// SendMessage handles POST /api/channels/:slugHash/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}

	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	value, err := parseWei(req.ValueWei)
	if err != nil {
		return respondLedgerError(c, err)
	}

	message, err := s.messages.SendMessage(ctx, service.SendMessageInput{
		Sender:   sender(c),
		SlugHash: slugHash,
		Content:  req.Content,
		ValueWei: value,
	})
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// HideMessage handles POST /api/channels/:slugHash/messages/:index/hide
func (s *Server) HideMessage(c *fiber.Ctx) error {
	return s.setMessageHidden(c, true)
}

// UnhideMessage handles POST /api/channels/:slugHash/messages/:index/unhide
func (s *Server) UnhideMessage(c *fiber.Ctx) error {
	return s.setMessageHidden(c, false)
}

func (s *Server) setMessageHidden(c *fiber.Ctx, hidden bool) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	index, err := s.parseMessageIndex(c)
	if err != nil {
		return nil
	}

	var (
		message *models.Message
		opErr   error
	)
	if hidden {
		message, opErr = s.messages.HideMessage(ctx, slugHash, index, sender(c))
	} else {
		message, opErr = s.messages.UnhideMessage(ctx, slugHash, index, sender(c))
	}
	if opErr != nil {
		return respondLedgerError(c, opErr)
	}

	return c.JSON(message)
}

// GetLatestMessages handles GET /api/channels/:slugHash/messages
func (s *Server) GetLatestMessages(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	messages, err := s.messages.GetLatestMessages(ctx, slugHash, page.Limit, page.Offset)
	if err != nil {
		return respondLedgerError(c, err)
	}
	total, err := s.messages.GetMessageCount(ctx, slugHash)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(MessageListResponse{Messages: messages, Total: total})
}

// GetMessagesRange handles GET /api/channels/:slugHash/messages/range?start&end
// Start and end are message indexes; the range is half-open [start, end).
func (s *Server) GetMessagesRange(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slugHash, err := s.parseSlugHash(c)
	if err != nil {
		return nil
	}

	start := c.QueryInt("start", 0)
	end := c.QueryInt("end", 0)
	if start < 0 || end < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("RANGE: start and end must not be negative"))
	}

	messages, err := s.messages.GetMessagesRange(ctx, slugHash, uint64(start), uint64(end))
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(MessageListResponse{Messages: messages, Total: uint64(len(messages))})
}

// QuoteMessageFee handles GET /api/fees/quote?bytes=n
func (s *Server) QuoteMessageFee(c *fiber.Ctx) error {
	ctx := c.UserContext()

	bytes := c.QueryInt("bytes", -1)
	if bytes < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("BYTES: must be a non-negative integer"))
	}

	fee, err := s.messages.QuoteMessageFee(ctx, bytes)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{
		"content_bytes": bytes,
		"fee_wei":       fee.String(),
	})
}
