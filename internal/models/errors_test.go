package models

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid params", err: NewInvalidParamsError("bad slug"), status: fiber.StatusBadRequest},
		{name: "unauthorized", err: NewUnauthorizedError("bad signature"), status: fiber.StatusUnauthorized},
		{name: "insufficient payment", err: NewInsufficientPaymentError(big.NewInt(10), big.NewInt(5)), status: fiber.StatusPaymentRequired},
		{name: "not admin", err: NewNotAdminError(), status: fiber.StatusForbidden},
		{name: "not owner", err: NewNotChannelOwnerError(), status: fiber.StatusForbidden},
		{name: "not owner or moderator", err: NewNotOwnerOrModeratorError(), status: fiber.StatusForbidden},
		{name: "not member", err: NewNotMemberError(), status: fiber.StatusForbidden},
		{name: "banned", err: NewUserBannedError(), status: fiber.StatusForbidden},
		{name: "channel missing", err: NewChannelNotFoundError("0xabc"), status: fiber.StatusNotFound},
		{name: "message missing", err: NewMessageNotFoundError(7), status: fiber.StatusNotFound},
		{name: "channel exists", err: NewChannelExistsError("general"), status: fiber.StatusConflict},
		{name: "already member", err: NewAlreadyMemberError(), status: fiber.StatusConflict},
		{name: "already moderator", err: NewAlreadyModeratorError(), status: fiber.StatusConflict},
		{name: "not moderator", err: NewNotModeratorError(), status: fiber.StatusConflict},
		{name: "not banned", err: NewUserNotBannedError(), status: fiber.StatusConflict},
		{name: "nothing to claim", err: NewNothingToClaimError(), status: fiber.StatusConflict},
		{name: "internal", err: NewInternalError(errors.New("boom")), status: fiber.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), status: fiber.StatusInternalServerError},
		{name: "wrapped app error", err: fmt.Errorf("handler: %w", NewNothingToClaimError()), status: fiber.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, StatusForError(tc.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
