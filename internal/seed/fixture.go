package seed

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"onchat/internal/chain"
	"onchat/internal/models"
	"onchat/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixture describes a reproducible ledger state. Fixtures are replayed
// through the services, so the resulting fee splits, balances, and events
// are exactly what the equivalent live traffic would have produced.
type Fixture struct {
	Channels []FixtureChannel `yaml:"channels"`
}

// FixtureChannel declares one channel with its roster and history.
type FixtureChannel struct {
	Slug       string           `yaml:"slug"`
	Name       string           `yaml:"name"`
	Owner      string           `yaml:"owner"`
	Members    []string         `yaml:"members"`
	Moderators []string         `yaml:"moderators"`
	Banned     []string         `yaml:"banned"`
	Messages   []FixtureMessage `yaml:"messages"`
}

// FixtureMessage declares one message in channel order.
type FixtureMessage struct {
	Sender  string `yaml:"sender"`
	Content string `yaml:"content"`
	Hidden  bool   `yaml:"hidden"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// ApplyFixture replays a fixture. Replays are tolerant of prior runs:
// channels that already exist are reused, memberships and moderator
// grants that are already in place are skipped, but messages are always
// appended.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) error {
	if err := service.SeedLedgerState(ctx, s.db, s.cfg); err != nil {
		return fmt.Errorf("seed ledger state: %w", err)
	}

	info, err := s.treasury.GetLedgerInfo(ctx)
	if err != nil {
		return fmt.Errorf("read ledger state: %w", err)
	}

	for _, fc := range fx.Channels {
		if fc.Owner == "" {
			return fmt.Errorf("fixture channel %q has no owner", fc.Slug)
		}

		name := fc.Name
		if name == "" {
			name = ChannelName(fc.Slug)
		}

		channel, err := s.channels.CreateChannel(ctx, service.CreateChannelInput{
			Sender:   fc.Owner,
			Slug:     fc.Slug,
			Name:     name,
			ValueWei: new(big.Int).Set(&info.ChannelCreationFee.Int),
		})
		if isCode(err, models.CodeChannelAlreadyExists) {
			channel, err = s.channels.GetChannel(ctx, chain.HashSlug(fc.Slug))
		}
		if err != nil {
			return fmt.Errorf("fixture channel %s: %w", fc.Slug, err)
		}

		for _, member := range fc.Members {
			_, err := s.channels.JoinChannel(ctx, channel.SlugHash, member)
			// A replay may find the wallet already enrolled, or banned by
			// a previous run; the ban list below re-bans it regardless.
			if err != nil && !isCode(err, models.CodeAlreadyMember) && !isCode(err, models.CodeUserBanned) {
				return fmt.Errorf("fixture join %s -> %s: %w", member, fc.Slug, err)
			}
		}

		for _, moderator := range fc.Moderators {
			if err := s.moderation.AddModerator(ctx, channel.SlugHash, moderator, channel.Owner); err != nil && !isCode(err, models.CodeAlreadyModerator) {
				return fmt.Errorf("fixture moderator %s in %s: %w", moderator, fc.Slug, err)
			}
		}

		for i, fm := range fc.Messages {
			message, err := s.factory.CreateMessage(ctx, channel.SlugHash, fm.Sender, func(in *service.SendMessageInput) {
				if fm.Content != "" {
					in.Content = fm.Content
				}
			})
			if err != nil {
				return fmt.Errorf("fixture message %d in %s: %w", i, fc.Slug, err)
			}
			if fm.Hidden {
				if _, err := s.messages.HideMessage(ctx, channel.SlugHash, message.MessageIndex, channel.Owner); err != nil {
					return fmt.Errorf("fixture hide message %d in %s: %w", i, fc.Slug, err)
				}
			}
		}

		// Bans last so banned wallets keep the history they produced above.
		for _, target := range fc.Banned {
			if err := s.moderation.BanUser(ctx, channel.SlugHash, target, channel.Owner); err != nil && !isCode(err, models.CodeUserBanned) {
				return fmt.Errorf("fixture ban %s in %s: %w", target, fc.Slug, err)
			}
		}
	}

	return nil
}

func isCode(err error, code string) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
