package repository

import "gorm.io/gorm"

// Repos bundles every repository bound to one database handle. The ledger
// service builds a bundle around the transaction handle inside each write so
// all statements share the transaction.
type Repos struct {
	Channels   ChannelRepository
	Members    MembershipRepository
	Moderators ModeratorRepository
	Bans       BanRepository
	Messages   MessageRepository
	Balances   BalanceRepository
	State      StateRepository
	Events     EventRepository
	Payouts    PayoutRepository
}

// NewRepos constructs a repository bundle on the given handle.
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Channels:   NewChannelRepository(db),
		Members:    NewMembershipRepository(db),
		Moderators: NewModeratorRepository(db),
		Bans:       NewBanRepository(db),
		Messages:   NewMessageRepository(db),
		Balances:   NewBalanceRepository(db),
		State:      NewStateRepository(db),
		Events:     NewEventRepository(db),
		Payouts:    NewPayoutRepository(db),
	}
}
