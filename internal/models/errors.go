package models

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/gofiber/fiber/v2"
)

// Ledger failure codes. Every rejected operation carries exactly one of
// these stable identifiers so clients can branch without parsing text.
const (
	CodeInvalidParams              = "INVALID_PARAMS"
	CodeChannelNotFound            = "CHANNEL_NOT_FOUND"
	CodeChannelAlreadyExists       = "CHANNEL_ALREADY_EXISTS"
	CodeMessageNotFound            = "MESSAGE_NOT_FOUND"
	CodeNotMember                  = "NOT_MEMBER"
	CodeAlreadyMember              = "ALREADY_MEMBER"
	CodeUserBanned                 = "USER_BANNED"
	CodeUserNotBanned              = "USER_NOT_BANNED"
	CodeNotModerator               = "NOT_MODERATOR"
	CodeAlreadyModerator           = "ALREADY_MODERATOR"
	CodeNotChannelOwner            = "NOT_CHANNEL_OWNER"
	CodeNotChannelOwnerOrModerator = "NOT_CHANNEL_OWNER_OR_MODERATOR"
	CodeNotAdmin                   = "NOT_ADMIN"
	CodeInsufficientPayment        = "INSUFFICIENT_PAYMENT"
	CodeNothingToClaim             = "NOTHING_TO_CLAIM"
	CodeUnauthorized               = "UNAUTHORIZED"
	CodeInternal                   = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors

func NewInvalidParamsError(message string) *AppError {
	return &AppError{Code: CodeInvalidParams, Message: message}
}

func NewChannelNotFoundError(slugHash string) *AppError {
	return &AppError{
		Code:    CodeChannelNotFound,
		Message: fmt.Sprintf("channel %s not found", slugHash),
	}
}

func NewChannelExistsError(slug string) *AppError {
	return &AppError{
		Code:    CodeChannelAlreadyExists,
		Message: fmt.Sprintf("channel %q already exists", slug),
	}
}

func NewMessageNotFoundError(index uint64) *AppError {
	return &AppError{
		Code:    CodeMessageNotFound,
		Message: fmt.Sprintf("message %d not found", index),
	}
}

func NewNotMemberError() *AppError {
	return &AppError{Code: CodeNotMember, Message: "not a channel member"}
}

func NewAlreadyMemberError() *AppError {
	return &AppError{Code: CodeAlreadyMember, Message: "already a channel member"}
}

func NewUserBannedError() *AppError {
	return &AppError{Code: CodeUserBanned, Message: "user is banned from this channel"}
}

func NewUserNotBannedError() *AppError {
	return &AppError{Code: CodeUserNotBanned, Message: "user is not banned from this channel"}
}

func NewNotModeratorError() *AppError {
	return &AppError{Code: CodeNotModerator, Message: "user is not a moderator"}
}

func NewAlreadyModeratorError() *AppError {
	return &AppError{Code: CodeAlreadyModerator, Message: "user is already a moderator"}
}

func NewNotChannelOwnerError() *AppError {
	return &AppError{Code: CodeNotChannelOwner, Message: "only the channel owner may do this"}
}

func NewNotOwnerOrModeratorError() *AppError {
	return &AppError{
		Code:    CodeNotChannelOwnerOrModerator,
		Message: "only the channel owner or a moderator may do this",
	}
}

func NewNotAdminError() *AppError {
	return &AppError{Code: CodeNotAdmin, Message: "only the ledger admin may do this"}
}

func NewInsufficientPaymentError(required, paid *big.Int) *AppError {
	return &AppError{
		Code:    CodeInsufficientPayment,
		Message: fmt.Sprintf("payment of %s wei is below the required %s wei", paid, required),
	}
}

func NewNothingToClaimError() *AppError {
	return &AppError{Code: CodeNothingToClaim, Message: "no balance to claim"}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps a ledger error to the HTTP status RespondWithError
// should use. Unknown errors are treated as internal.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeInvalidParams:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeInsufficientPayment:
		return fiber.StatusPaymentRequired
	case CodeNotAdmin, CodeNotChannelOwner, CodeNotChannelOwnerOrModerator,
		CodeNotMember, CodeUserBanned:
		return fiber.StatusForbidden
	case CodeChannelNotFound, CodeMessageNotFound:
		return fiber.StatusNotFound
	case CodeChannelAlreadyExists, CodeAlreadyMember, CodeAlreadyModerator,
		CodeNotModerator, CodeUserNotBanned, CodeNothingToClaim:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
