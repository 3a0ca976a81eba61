package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"onchat/internal/config"
	"onchat/internal/models"
	"onchat/internal/payout"
	"onchat/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Well-known dev-chain addresses used across the service tests.
const (
	adminAddr    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	treasuryAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	aliceAddr    = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	bobAddr      = "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
	carolAddr    = "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"
)

// Wei equivalents of the seeded fee schedule (0.0025 / 0.00001 / 0.0000002
// ether).
const (
	creationFeeWei    = "2500000000000000"
	messageFeeBaseWei = "10000000000000"
	messagePerByteWei = "200000000000"
)

type capturingPublisher struct {
	events []*models.Event
}

func (p *capturingPublisher) PublishEvent(event *models.Event) {
	p.events = append(p.events, event)
}

func (p *capturingPublisher) types() []models.EventType {
	out := make([]models.EventType, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

// failingTransferer rejects every positive transfer, for atomicity tests.
type failingTransferer struct{}

func (failingTransferer) Transfer(_ context.Context, _ *repository.Repos, _ models.PayoutKind, _ string, amount *big.Int) error {
	if amount != nil && amount.Sign() > 0 {
		return errors.New("transfer rejected")
	}
	return nil
}

type serviceFixture struct {
	db         *gorm.DB
	publisher  *capturingPublisher
	channels   *ChannelService
	messages   *MessageService
	moderation *ModerationService
	treasury   *TreasuryService
	events     *EventService
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Channel{},
		&models.ChannelMember{},
		&models.ChannelModerator{},
		&models.ChannelBan{},
		&models.Message{},
		&models.OwnerBalance{},
		&models.LedgerState{},
		&models.Event{},
		&models.Payout{},
	))
	require.NoError(t, SeedLedgerState(context.Background(), db, &config.Config{
		AdminAddress:          adminAddr,
		TreasuryWallet:        treasuryAddr,
		ChannelCreationFeeEth: "0.0025",
		MessageFeeBaseEth:     "0.00001",
		MessageFeePerByteEth:  "0.0000002",
	}))
	return db
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	return newFixtureWithTransferer(t, payout.NewRecorder())
}

func newFixtureWithTransferer(t *testing.T, transferer payout.Transferer) *serviceFixture {
	t.Helper()
	db := setupServiceDB(t)
	publisher := &capturingPublisher{}
	return &serviceFixture{
		db:         db,
		publisher:  publisher,
		channels:   NewChannelService(db, transferer, publisher),
		messages:   NewMessageService(db, transferer, publisher),
		moderation: NewModerationService(db, publisher),
		treasury:   NewTreasuryService(db, transferer, publisher),
		events:     NewEventService(db),
	}
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func wei(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad wei literal %q", s)
	return v
}

func mustCreateChannel(t *testing.T, fx *serviceFixture, slug, owner string) *models.Channel {
	t.Helper()
	channel, err := fx.channels.CreateChannel(context.Background(), CreateChannelInput{
		Sender:   owner,
		Slug:     slug,
		Name:     slug,
		ValueWei: wei(t, creationFeeWei),
	})
	require.NoError(t, err)
	return channel
}

func mustJoin(t *testing.T, fx *serviceFixture, slugHash, sender string) {
	t.Helper()
	_, err := fx.channels.JoinChannel(context.Background(), slugHash, sender)
	require.NoError(t, err)
}

func mustSend(t *testing.T, fx *serviceFixture, slugHash, sender, content string) *models.Message {
	t.Helper()
	fee, err := fx.messages.QuoteMessageFee(context.Background(), len(content))
	require.NoError(t, err)
	message, err := fx.messages.SendMessage(context.Background(), SendMessageInput{
		Sender:   sender,
		SlugHash: slugHash,
		Content:  content,
		ValueWei: fee,
	})
	require.NoError(t, err)
	return message
}
