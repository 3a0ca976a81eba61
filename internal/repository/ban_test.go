package repository

import (
	"context"
	"errors"
	"testing"

	"onchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanRepository(t *testing.T) {
	db := setupTestDB(t)
	channels := NewChannelRepository(db)
	repo := NewBanRepository(db)
	ctx := context.Background()

	ch := &models.Channel{SlugHash: "0xban", Slug: "ban", Name: "Bans", Owner: testOwner}
	require.NoError(t, channels.Create(ctx, ch))

	t.Run("AddCheckRemove", func(t *testing.T) {
		require.NoError(t, repo.Add(ctx, &models.ChannelBan{
			ChannelID: ch.ID, Address: testMember, BannedBy: testOwner,
		}))

		banned, err := repo.IsBanned(ctx, ch.ID, testMember)
		require.NoError(t, err)
		assert.True(t, banned)

		bans, err := repo.List(ctx, ch.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, bans, 1)
		assert.Equal(t, testOwner, bans[0].BannedBy)

		require.NoError(t, repo.Remove(ctx, ch.ID, testMember))
		banned, err = repo.IsBanned(ctx, ch.ID, testMember)
		require.NoError(t, err)
		assert.False(t, banned)
	})

	t.Run("DuplicateBanRejected", func(t *testing.T) {
		require.NoError(t, repo.Add(ctx, &models.ChannelBan{
			ChannelID: ch.ID, Address: testOther, BannedBy: testOwner,
		}))
		err := repo.Add(ctx, &models.ChannelBan{
			ChannelID: ch.ID, Address: testOther, BannedBy: testOwner,
		})
		require.Error(t, err)

		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeUserBanned, appErr.Code)
	})

	t.Run("BansScopedPerChannel", func(t *testing.T) {
		other := &models.Channel{SlugHash: "0xban2", Slug: "ban-two", Name: "Bans 2", Owner: testOwner}
		require.NoError(t, channels.Create(ctx, other))

		banned, err := repo.IsBanned(ctx, other.ID, testOther)
		require.NoError(t, err)
		assert.False(t, banned)
	})
}
