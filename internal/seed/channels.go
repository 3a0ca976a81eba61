package seed

import (
	"context"
	"fmt"
	"math/big"

	"onchat/internal/config"
	"onchat/internal/models"
	"onchat/internal/payout"
	"onchat/internal/service"

	"gorm.io/gorm"
)

// BuiltInChannel is a permanent protocol channel.
type BuiltInChannel struct {
	Name string
	Slug string
}

// BuiltInChannels defines the permanent protocol channels. They are owned
// by the admin wallet and registered through the normal fee-charging path.
var BuiltInChannels = []BuiltInChannel{
	{Name: "The Commons", Slug: "commons"},
	{Name: "Announcements", Slug: "announcements"},
	{Name: "Support", Slug: "support"},
	{Name: "Trading Floor", Slug: "trading"},
	{Name: "Governance", Slug: "governance"},
	{Name: "Builders", Slug: "builders"},
	{Name: "Off Topic", Slug: "off-topic"},
}

// Channels registers the built-in channels that are missing. Registration
// goes through the channel service with the admin as owner paying the
// current creation fee, so fee splits and the event log stay truthful.
// Channels that already exist are left untouched.
func Channels(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if err := service.SeedLedgerState(ctx, db, cfg); err != nil {
		return fmt.Errorf("seed ledger state: %w", err)
	}

	transferer := payout.NewRecorder()
	channels := service.NewChannelService(db, transferer, nil)
	treasury := service.NewTreasuryService(db, transferer, nil)

	info, err := treasury.GetLedgerInfo(ctx)
	if err != nil {
		return fmt.Errorf("read ledger state: %w", err)
	}

	for _, item := range BuiltInChannels {
		_, err := channels.CreateChannel(ctx, service.CreateChannelInput{
			Sender:   info.AdminAddress,
			Slug:     item.Slug,
			Name:     item.Name,
			ValueWei: new(big.Int).Set(&info.ChannelCreationFee.Int),
		})
		if err != nil {
			if isCode(err, models.CodeChannelAlreadyExists) {
				continue
			}
			return fmt.Errorf("seed built-in channel %s: %w", item.Slug, err)
		}
	}

	return nil
}
