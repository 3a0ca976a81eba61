package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ChannelKeyPrefix      = "channel:%s"
	MessageHistoryPrefix  = "channel:%s:messages"
	UserChannelsKeyPrefix = "user:%s:channels"
	LedgerStateKey        = "ledger:state"
	ChannelDirectoryKey   = "channels:directory"
)

const (
	ChannelTTL        = 10 * time.Minute
	MessageHistoryTTL = 2 * time.Minute
	UserChannelsTTL   = 5 * time.Minute
	LedgerStateTTL    = 5 * time.Minute
	DirectoryTTL      = 1 * time.Minute
)

func ChannelKey(slugHash string) string {
	return fmt.Sprintf(ChannelKeyPrefix, slugHash)
}

func MessageHistoryKey(slugHash string) string {
	return fmt.Sprintf(MessageHistoryPrefix, slugHash)
}

func UserChannelsKey(address string) string {
	return fmt.Sprintf(UserChannelsKeyPrefix, address)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateChannel(ctx context.Context, slugHash string) {
	Invalidate(ctx, ChannelKey(slugHash))
	Invalidate(ctx, MessageHistoryKey(slugHash))
	Invalidate(ctx, ChannelDirectoryKey)
}

func InvalidateUserChannels(ctx context.Context, address string) {
	Invalidate(ctx, UserChannelsKey(address))
}

func InvalidateLedgerState(ctx context.Context) {
	Invalidate(ctx, LedgerStateKey)
}
