package seed

import (
	"context"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"onchat/internal/chain"
	"onchat/internal/models"
	"onchat/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/ethereum/go-ethereum/crypto"
)

// Factory builds ledger entities and persists them through the services,
// paying the exact fee each operation quotes. It is a thin helper used by
// seed presets and tests.
type Factory struct {
	channels *service.ChannelService
	messages *service.MessageService
	treasury *service.TreasuryService
	rng      *rand.Rand
}

// NewFactory creates a new Factory writing through the provided services.
func NewFactory(channels *service.ChannelService, messages *service.MessageService, treasury *service.TreasuryService) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{
		channels: channels,
		messages: messages,
		treasury: treasury,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewWallet generates a throwaway keypair and returns its checksummed
// address. Seed traffic never needs the key again: services trust the
// sender they are handed, signatures only gate the HTTP layer.
func (f *Factory) NewWallet() (string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	return chain.AddressFromKey(key), nil
}

// ChannelSlug generates a random slug from the lowercase-and-hyphen
// alphabet channel registration accepts.
func (f *Factory) ChannelSlug() string {
	slug := SanitizeSlug(gofakeit.Word() + "-" + gofakeit.Word())
	if slug == "" {
		slug = SanitizeSlug(gofakeit.Word())
	}
	if slug == "" {
		slug = "channel"
	}
	return slug
}

// SanitizeSlug lowercases the input, strips everything outside [a-z-],
// trims stray hyphens, and caps the result at the 20-byte slug limit.
func SanitizeSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || r == '-' {
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 20 {
		slug = strings.Trim(slug[:20], "-")
	}
	return slug
}

// ChannelName derives a display name from a slug: hyphens become spaces
// and each word is capitalized.
func ChannelName(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// CreateChannel registers a channel for the given owner with the exact
// creation fee attached. Slug collisions roll a fresh slug a few times
// before giving up. Optional override functions may modify the input
// before it is submitted.
func (f *Factory) CreateChannel(ctx context.Context, owner string, overrides ...func(*service.CreateChannelInput)) (*models.Channel, error) {
	fee, err := f.creationFee(ctx)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		slug := f.ChannelSlug()
		input := service.CreateChannelInput{
			Sender:   owner,
			Slug:     slug,
			Name:     ChannelName(slug),
			ValueWei: new(big.Int).Set(fee),
		}
		for _, override := range overrides {
			override(&input)
		}

		channel, err := f.channels.CreateChannel(ctx, input)
		if err == nil {
			return channel, nil
		}
		lastErr = err

		if isCode(err, models.CodeChannelAlreadyExists) {
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// CreateMessage sends a message with generated content and the exact
// quoted fee attached. Overrides run before the fee is quoted, so an
// override that changes the content still pays the right amount.
func (f *Factory) CreateMessage(ctx context.Context, slugHash, sender string, overrides ...func(*service.SendMessageInput)) (*models.Message, error) {
	input := service.SendMessageInput{
		Sender:   sender,
		SlugHash: slugHash,
		Content:  gofakeit.Sentence(f.rng.Intn(12) + 3),
	}
	for _, override := range overrides {
		override(&input)
	}

	if input.ValueWei == nil {
		fee, err := f.messages.QuoteMessageFee(ctx, len(input.Content))
		if err != nil {
			return nil, err
		}
		input.ValueWei = fee
	}

	return f.messages.SendMessage(ctx, input)
}

func (f *Factory) creationFee(ctx context.Context) (*big.Int, error) {
	info, err := f.treasury.GetLedgerInfo(ctx)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(&info.ChannelCreationFee.Int), nil
}
