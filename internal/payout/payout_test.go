package payout

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"onchat/internal/models"
	"onchat/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Payout{}))
	return db
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	recipient := "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	t.Run("Records Payout Row", func(t *testing.T) {
		db := setupTestDB(t)
		repos := repository.NewRepos(db)

		err := NewRecorder().Transfer(ctx, repos, models.PayoutKindRefund, recipient, big.NewInt(42))
		require.NoError(t, err)

		payouts, err := repos.Payouts.List(ctx, 10, 0, "")
		require.NoError(t, err)
		require.Len(t, payouts, 1)
		assert.Equal(t, models.PayoutKindRefund, payouts[0].Kind)
		assert.Equal(t, recipient, payouts[0].Recipient)
		assert.Equal(t, "42", payouts[0].AmountWei.String())
		assert.Len(t, payouts[0].ID, 36)
	})

	t.Run("Zero Amount Is A No-Op", func(t *testing.T) {
		db := setupTestDB(t)
		repos := repository.NewRepos(db)

		require.NoError(t, NewRecorder().Transfer(ctx, repos, models.PayoutKindRefund, recipient, big.NewInt(0)))
		require.NoError(t, NewRecorder().Transfer(ctx, repos, models.PayoutKindRefund, recipient, nil))

		payouts, err := repos.Payouts.List(ctx, 10, 0, "")
		require.NoError(t, err)
		assert.Empty(t, payouts)
	})

	t.Run("Rolled Back Transaction Leaves No Payout", func(t *testing.T) {
		db := setupTestDB(t)
		boom := errors.New("transfer rejected")

		err := db.Transaction(func(tx *gorm.DB) error {
			repos := repository.NewRepos(tx)
			if err := NewRecorder().Transfer(ctx, repos, models.PayoutKindOwnerClaim, recipient, big.NewInt(1000)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		payouts, err := repository.NewRepos(db).Payouts.List(ctx, 10, 0, "")
		require.NoError(t, err)
		assert.Empty(t, payouts)
	})
}
