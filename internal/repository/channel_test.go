package repository

import (
	"context"
	"errors"
	"testing"

	"onchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Channel{},
		&models.ChannelMember{},
		&models.ChannelModerator{},
		&models.ChannelBan{},
		&models.Message{},
		&models.OwnerBalance{},
		&models.LedgerState{},
		&models.Event{},
		&models.Payout{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

const (
	testOwner  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testMember = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testOther  = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

func TestChannelRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepository(db)
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		ch := &models.Channel{
			SlugHash: "0x1111",
			Slug:     "general",
			Name:     "General",
			Owner:    testOwner,
		}
		require.NoError(t, repo.Create(ctx, ch))
		assert.NotZero(t, ch.ID)

		fetched, err := repo.GetBySlugHash(ctx, ch.SlugHash)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "general", fetched.Slug)
		assert.Equal(t, testOwner, fetched.Owner)
	})

	t.Run("GetMissingReturnsNil", func(t *testing.T) {
		fetched, err := repo.GetBySlugHash(ctx, "0xmissing")
		require.NoError(t, err)
		assert.Nil(t, fetched)

		locked, err := repo.GetBySlugHashForUpdate(ctx, "0xmissing")
		require.NoError(t, err)
		assert.Nil(t, locked)
	})

	t.Run("DuplicateSlugHashRejected", func(t *testing.T) {
		ch := &models.Channel{SlugHash: "0xdup", Slug: "dup", Name: "Dup", Owner: testOwner}
		require.NoError(t, repo.Create(ctx, ch))

		again := &models.Channel{SlugHash: "0xdup", Slug: "dup", Name: "Dup", Owner: testOther}
		err := repo.Create(ctx, again)
		require.Error(t, err)

		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeChannelAlreadyExists, appErr.Code)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewChannelRepository(db)

		for _, slug := range []string{"alpha", "beta", "gamma"} {
			require.NoError(t, repo.Create(ctx, &models.Channel{
				SlugHash: "0x" + slug, Slug: slug, Name: slug, Owner: testOwner,
			}))
		}

		channels, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, channels, 3)
		assert.Equal(t, "gamma", channels[0].Slug)
		assert.Equal(t, "alpha", channels[2].Slug)

		page, err := repo.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "beta", page[0].Slug)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
	})

	t.Run("ListJoinedByInJoinOrder", func(t *testing.T) {
		db := setupTestDB(t)
		channels := NewChannelRepository(db)
		members := NewMembershipRepository(db)

		first := &models.Channel{SlugHash: "0xa", Slug: "a", Name: "A", Owner: testOwner}
		second := &models.Channel{SlugHash: "0xb", Slug: "b", Name: "B", Owner: testOwner}
		require.NoError(t, channels.Create(ctx, first))
		require.NoError(t, channels.Create(ctx, second))

		// Join the second channel first, then the first.
		require.NoError(t, members.Add(ctx, &models.ChannelMember{ChannelID: second.ID, Address: testMember}))
		require.NoError(t, members.Add(ctx, &models.ChannelMember{ChannelID: first.ID, Address: testMember}))

		joined, err := channels.ListJoinedBy(ctx, testMember, 10, 0)
		require.NoError(t, err)
		require.Len(t, joined, 2)
		assert.Equal(t, "b", joined[0].Slug)
		assert.Equal(t, "a", joined[1].Slug)
	})
}
