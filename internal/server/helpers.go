package server

import (
	"errors"
	"math/big"
	"strconv"

	"onchat/internal/chain"
	"onchat/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// validate checks request structs against their `validate` tags. Tags cover
// structure only (required fields, length bounds); domain rules like the slug
// alphabet live in the services.
var validate = validator.New()

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// sender returns the checksummed signer address stored by the signature
// middleware. Routes behind SignatureRequired always have it.
func sender(c *fiber.Ctx) string {
	addr, _ := c.Locals("sender").(string)
	return addr
}

// respondLedgerError maps a domain error onto its HTTP status and writes
// the standard error envelope.
func respondLedgerError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// parseBody decodes a JSON request body into out and checks its validate
// tags. On failure it writes a 400 JSON response and returns
// errResponseWritten.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("Invalid request body"))
		return errResponseWritten
	}
	if err := validate.Struct(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("Invalid request body: "+err.Error()))
		return errResponseWritten
	}
	return nil
}

// parseSlugHash extracts and canonicalizes the :slugHash route parameter.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseSlugHash(c *fiber.Ctx) (string, error) {
	slugHash, err := chain.NormalizeSlugHash(c.Params("slugHash"))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("SLUG_HASH: "+err.Error()))
		return "", errResponseWritten
	}
	return slugHash, nil
}

// parseAddressParam extracts and checksums an address route parameter.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseAddressParam(c *fiber.Ctx, param string) (string, error) {
	addr, err := chain.NormalizeAddress(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("ADDRESS: "+err.Error()))
		return "", errResponseWritten
	}
	return addr, nil
}

// parseMessageIndex extracts the :index route parameter as a uint64.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseMessageIndex(c *fiber.Ctx) (uint64, error) {
	index, err := strconv.ParseUint(c.Params("index"), 10, 64)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidParamsError("MESSAGE_INDEX: must be a non-negative integer"))
		return 0, errResponseWritten
	}
	return index, nil
}

// parseWei parses a decimal wei string from a request body. The empty
// string means zero, matching a transaction sent without value.
func parseWei(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	wei, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, models.NewInvalidParamsError("AMOUNT_WEI: not a decimal integer")
	}
	if wei.Sign() < 0 {
		return nil, models.NewInvalidParamsError("AMOUNT_WEI: must not be negative")
	}
	return wei, nil
}
