package seed

import (
	"context"
	"testing"

	"onchat/internal/models"
)

func TestChannels_Idempotent(t *testing.T) {
	t.Parallel()

	db := openSeedDB(t)
	cfg := seedTestConfig()
	ctx := context.Background()

	if err := Channels(ctx, db, cfg); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Channels(ctx, db, cfg); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var channelCount int64
	if err := db.Model(&models.Channel{}).Count(&channelCount).Error; err != nil {
		t.Fatalf("count channels: %v", err)
	}
	if channelCount != int64(len(BuiltInChannels)) {
		t.Fatalf("expected %d channels, got %d", len(BuiltInChannels), channelCount)
	}

	for _, item := range BuiltInChannels {
		var channel models.Channel
		if err := db.Where("slug = ?", item.Slug).First(&channel).Error; err != nil {
			t.Fatalf("missing channel %s: %v", item.Slug, err)
		}
		if channel.Owner != seedAdminAddr {
			t.Fatalf("expected channel %s to be owned by the admin, got %s", item.Slug, channel.Owner)
		}
		if channel.Name != item.Name {
			t.Fatalf("expected channel %s name %q, got %q", item.Slug, item.Name, channel.Name)
		}

		var member models.ChannelMember
		err := db.Where("channel_id = ? AND address = ?", channel.ID, seedAdminAddr).First(&member).Error
		if err != nil {
			t.Fatalf("admin is not enrolled in %s: %v", item.Slug, err)
		}
	}

	// Reruns must not mint duplicate channels for a slug hash.
	rows, err := db.Raw(`
		SELECT slug_hash
		FROM channels
		GROUP BY slug_hash
		HAVING COUNT(*) > 1
	`).Rows()
	if err != nil {
		t.Fatalf("duplicate slug_hash check query failed: %v", err)
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		t.Fatal("found duplicate channels for a slug hash")
	}

	// Registration went through the fee-charging path, so the treasury
	// holds its cut and the admin holds the owner share.
	var state models.LedgerState
	if err := db.First(&state).Error; err != nil {
		t.Fatalf("load ledger state: %v", err)
	}
	if state.TreasuryBalance.Sign() <= 0 {
		t.Fatal("expected built-in registrations to fund the treasury")
	}

	var adminBalance models.OwnerBalance
	if err := db.Where("address = ?", seedAdminAddr).First(&adminBalance).Error; err != nil {
		t.Fatalf("load admin owner balance: %v", err)
	}
	if adminBalance.Balance.Sign() <= 0 {
		t.Fatal("expected the admin to hold the owner share of its own fees")
	}
}
