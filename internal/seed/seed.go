// Package seed provides ledger seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"onchat/internal/config"
	"onchat/internal/database"
	"onchat/internal/models"
	"onchat/internal/payout"
	"onchat/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumWallets  int
	NumChannels int
	NumMessages int
}

// Presets are the named seeding profiles cmd/seed accepts.
var Presets = map[string]Options{
	"demo": {NumWallets: 8, NumChannels: 4, NumMessages: 60},
	"mega": {NumWallets: 100, NumChannels: 30, NumMessages: 3000},
}

// Seeder populates the ledger with demo traffic. Every write goes through
// the ledger services, so fee splits, counters, balances, and the event
// log end up exactly as organic traffic would have left them.
type Seeder struct {
	db      *gorm.DB
	cfg     *config.Config
	factory *Factory

	channels   *service.ChannelService
	messages   *service.MessageService
	moderation *service.ModerationService
	treasury   *service.TreasuryService
}

// NewSeeder creates a Seeder bound to the provided Gorm DB. Events are
// persisted but not broadcast: nothing is listening during a seed run.
func NewSeeder(db *gorm.DB, cfg *config.Config) *Seeder {
	transferer := payout.NewRecorder()
	channels := service.NewChannelService(db, transferer, nil)
	messages := service.NewMessageService(db, transferer, nil)
	moderation := service.NewModerationService(db, nil)
	treasury := service.NewTreasuryService(db, transferer, nil)

	return &Seeder{
		db:         db,
		cfg:        cfg,
		factory:    NewFactory(channels, messages, treasury),
		channels:   channels,
		messages:   messages,
		moderation: moderation,
		treasury:   treasury,
	}
}

// Factory exposes the seeder's entity factory for callers that need
// one-off entities instead of a whole mesh.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// ClearAll truncates every ledger table and restores the state row from
// configuration. PostgreSQL only.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	if err := database.TruncateAllTables(s.db.WithContext(ctx)); err != nil {
		return err
	}
	return service.SeedLedgerState(ctx, s.db, s.cfg)
}

// SeedMesh creates wallets, registers channels, joins members, and sends
// fee-paying messages, with a sprinkle of moderation activity so bans and
// hidden messages show up in development.
func (s *Seeder) SeedMesh(ctx context.Context, opts Options) error {
	if opts.NumWallets <= 0 {
		opts.NumWallets = 12
	}
	if opts.NumChannels <= 0 {
		opts.NumChannels = 6
	}
	if opts.NumMessages < 0 {
		opts.NumMessages = 0
	}

	log.Printf("🌱 Seeding %d wallets, %d channels, %d messages...", opts.NumWallets, opts.NumChannels, opts.NumMessages)

	// The state row must exist before anything can pay a fee. Idempotent;
	// an existing row wins.
	if err := service.SeedLedgerState(ctx, s.db, s.cfg); err != nil {
		return fmt.Errorf("seed ledger state: %w", err)
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	wallets := make([]string, 0, opts.NumWallets)
	for i := 0; i < opts.NumWallets; i++ {
		wallet, err := s.factory.NewWallet()
		if err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}
	log.Printf("✓ %d wallets created", len(wallets))

	channels := make([]*models.Channel, 0, opts.NumChannels)
	for i := 0; i < opts.NumChannels; i++ {
		owner := wallets[i%len(wallets)]
		channel, err := s.factory.CreateChannel(ctx, owner)
		if err != nil {
			return fmt.Errorf("register channel: %w", err)
		}
		channels = append(channels, channel)
	}
	log.Printf("✓ %d channels registered", len(channels))

	// Roughly half the wallets join each channel. Owners are enrolled by
	// registration already.
	rolls := make(map[string][]string, len(channels))
	for _, channel := range channels {
		rolls[channel.SlugHash] = []string{channel.Owner}
		for _, wallet := range wallets {
			if wallet == channel.Owner || r.Intn(2) == 0 {
				continue
			}
			if _, err := s.channels.JoinChannel(ctx, channel.SlugHash, wallet); err != nil {
				return fmt.Errorf("join channel %s: %w", channel.Slug, err)
			}
			rolls[channel.SlugHash] = append(rolls[channel.SlugHash], wallet)
		}
	}

	// Owners promote their first joiner.
	promoted := 0
	for _, channel := range channels {
		roll := rolls[channel.SlugHash]
		if len(roll) < 2 {
			continue
		}
		if err := s.moderation.AddModerator(ctx, channel.SlugHash, roll[1], channel.Owner); err != nil {
			return fmt.Errorf("promote moderator in %s: %w", channel.Slug, err)
		}
		promoted++
	}
	if promoted > 0 {
		log.Printf("✓ %d moderators promoted", promoted)
	}

	sent := 0
	lastMessage := make(map[string]*models.Message, len(channels))
	for i := 0; i < opts.NumMessages; i++ {
		channel := channels[r.Intn(len(channels))]
		roll := rolls[channel.SlugHash]
		sender := roll[r.Intn(len(roll))]

		message, err := s.factory.CreateMessage(ctx, channel.SlugHash, sender)
		if err != nil {
			return fmt.Errorf("send message in %s: %w", channel.Slug, err)
		}
		lastMessage[channel.SlugHash] = message
		sent++

		if sent%100 == 0 {
			log.Printf("Sent %d messages...", sent)
		}
	}
	log.Printf("✓ %d messages sent", sent)

	// Bans run after messaging so banned wallets leave real history behind.
	banned := 0
	for _, channel := range channels {
		roll := rolls[channel.SlugHash]
		if len(roll) < 3 || r.Intn(3) != 0 {
			continue
		}
		target := roll[len(roll)-1]
		if err := s.moderation.BanUser(ctx, channel.SlugHash, target, channel.Owner); err != nil {
			return fmt.Errorf("ban in %s: %w", channel.Slug, err)
		}
		banned++
	}
	if banned > 0 {
		log.Printf("✓ %d wallets banned", banned)
	}

	hidden := 0
	for _, channel := range channels {
		message, ok := lastMessage[channel.SlugHash]
		if !ok || r.Intn(3) != 0 {
			continue
		}
		if _, err := s.messages.HideMessage(ctx, channel.SlugHash, message.MessageIndex, channel.Owner); err != nil {
			return fmt.Errorf("hide message in %s: %w", channel.Slug, err)
		}
		hidden++
	}
	if hidden > 0 {
		log.Printf("✓ %d messages hidden", hidden)
	}

	log.Println("🎉 Ledger seeding completed successfully!")
	return nil
}

// ApplyPreset runs a named seeding profile.
func (s *Seeder) ApplyPreset(ctx context.Context, name string) error {
	opts, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	return s.SeedMesh(ctx, opts)
}
