package server

import (
	"math/big"

	"onchat/internal/chain"
	"onchat/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminAddressRequest carries an address for admin wallet updates.
type AdminAddressRequest struct {
	Address string `json:"address" validate:"required"`
}

// AdminFeeRequest carries a decimal wei amount for fee schedule updates.
type AdminFeeRequest struct {
	AmountWei string `json:"amount_wei" validate:"required"`
}

// ClaimResponse reports the amount paid out by a claim.
type ClaimResponse struct {
	Recipient string `json:"recipient"`
	AmountWei string `json:"amount_wei"`
}

// GetLedgerInfo handles GET /api/ledger
// @Summary Ledger overview
// @Description Returns the admin address, treasury wallet, fee schedule, accumulated treasury balance, and channel count.
// @Tags ledger
// @Produce json
// @Success 200 {object} service.LedgerInfo
// @Router /ledger [get]
func (s *Server) GetLedgerInfo(c *fiber.Ctx) error {
	ctx := c.UserContext()

	info, err := s.treasury.GetLedgerInfo(ctx)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(info)
}

// ClaimOwnerBalance handles POST /api/claims/owner
// @Summary Claim accrued channel revenue
// @Description Pays out the sender's full owner balance and zeroes it. The balance is zeroed before the transfer runs, so a failed transfer rolls the whole claim back.
// @Tags claims
// @Produce json
// @Success 200 {object} ClaimResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /claims/owner [post]
func (s *Server) ClaimOwnerBalance(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := sender(c)

	amount, err := s.treasury.ClaimOwnerBalance(ctx, caller)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(ClaimResponse{Recipient: caller, AmountWei: amount.String()})
}

// ClaimTreasuryBalance handles POST /api/claims/treasury
// @Summary Claim the protocol treasury balance
// @Description Pays out the accumulated treasury share. Only the configured treasury wallet may call this.
// @Tags claims
// @Produce json
// @Success 200 {object} ClaimResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /claims/treasury [post]
func (s *Server) ClaimTreasuryBalance(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := sender(c)

	amount, err := s.treasury.ClaimTreasuryBalance(ctx, caller)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(ClaimResponse{Recipient: caller, AmountWei: amount.String()})
}

// SetTreasuryWallet handles PUT /api/admin/treasury-wallet
// @Summary Update the treasury wallet
// @Description Points future treasury claims at a new wallet. Admin only; the zero address is rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminAddressRequest true "New treasury wallet"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/treasury-wallet [put]
func (s *Server) SetTreasuryWallet(c *fiber.Ctx) error {
	ctx := c.UserContext()
	address, err := s.parseAddressBody(c)
	if err != nil {
		return nil
	}

	if err := s.treasury.SetTreasuryWallet(ctx, sender(c), address); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Treasury wallet updated"})
}

// SetChannelCreationFee handles PUT /api/admin/channel-creation-fee
// @Summary Update the channel creation fee
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminFeeRequest true "Fee in wei"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/channel-creation-fee [put]
func (s *Server) SetChannelCreationFee(c *fiber.Ctx) error {
	ctx := c.UserContext()
	wei, err := s.parseFeeBody(c)
	if err != nil {
		return nil
	}

	if err := s.treasury.SetChannelCreationFee(ctx, sender(c), wei); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Channel creation fee updated"})
}

// SetMessageFeeBase handles PUT /api/admin/message-fee-base
// @Summary Update the flat component of the message fee
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminFeeRequest true "Fee in wei"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/message-fee-base [put]
func (s *Server) SetMessageFeeBase(c *fiber.Ctx) error {
	ctx := c.UserContext()
	wei, err := s.parseFeeBody(c)
	if err != nil {
		return nil
	}

	if err := s.treasury.SetMessageFeeBase(ctx, sender(c), wei); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Message fee base updated"})
}

// SetMessageFeePerByte handles PUT /api/admin/message-fee-per-byte
// @Summary Update the per-byte component of the message fee
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminFeeRequest true "Fee in wei"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/message-fee-per-byte [put]
func (s *Server) SetMessageFeePerByte(c *fiber.Ctx) error {
	ctx := c.UserContext()
	wei, err := s.parseFeeBody(c)
	if err != nil {
		return nil
	}

	if err := s.treasury.SetMessageFeePerByte(ctx, sender(c), wei); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Message fee per byte updated"})
}

// TransferAdmin handles PUT /api/admin/owner
// @Summary Hand over protocol administration
// @Description Transfers admin authority to a new address. Admin only; takes effect immediately.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminAddressRequest true "New admin address"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/owner [put]
func (s *Server) TransferAdmin(c *fiber.Ctx) error {
	ctx := c.UserContext()
	address, err := s.parseAddressBody(c)
	if err != nil {
		return nil
	}

	if err := s.treasury.TransferAdmin(ctx, sender(c), address); err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Admin transferred"})
}

// GetPayouts handles GET /api/payouts?recipient&offset&limit
func (s *Server) GetPayouts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 20)

	recipient := c.Query("recipient")
	if recipient != "" {
		normalized, err := chain.NormalizeAddress(recipient)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidParamsError("RECIPIENT: "+err.Error()))
		}
		recipient = normalized
	}

	payouts, err := s.treasury.ListPayouts(ctx, page.Limit, page.Offset, recipient)
	if err != nil {
		return respondLedgerError(c, err)
	}

	return c.JSON(payouts)
}

// parseAddressBody reads an AdminAddressRequest and checksums the address.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseAddressBody(c *fiber.Ctx) (string, error) {
	var req AdminAddressRequest
	if err := parseBody(c, &req); err != nil {
		return "", errResponseWritten
	}
	address, err := chain.NormalizeAddress(req.Address)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("ADDRESS: "+err.Error()))
		return "", errResponseWritten
	}
	return address, nil
}

// parseFeeBody reads an AdminFeeRequest into a wei amount.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseFeeBody(c *fiber.Ctx) (*big.Int, error) {
	var req AdminFeeRequest
	if err := parseBody(c, &req); err != nil {
		return nil, errResponseWritten
	}
	wei, err := parseWei(req.AmountWei)
	if err != nil {
		_ = respondLedgerError(c, err)
		return nil, errResponseWritten
	}
	return wei, nil
}
