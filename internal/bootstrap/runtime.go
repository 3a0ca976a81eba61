// Package bootstrap wires the process-level runtime: database, cache, and
// the singleton ledger state row every operation depends on.
package bootstrap

import (
	"context"
	"fmt"

	"onchat/internal/cache"
	"onchat/internal/config"
	"onchat/internal/database"
	"onchat/internal/seed"
	"onchat/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis, guarantees the ledger state row
// exists, and optionally registers the built-in channels.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	// The state row carries the admin, treasury, and fee schedule; without
	// it nothing can charge a fee. Idempotent; an existing row wins.
	if err := service.SeedLedgerState(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap ledger state: %w", err)
	}

	if opts.SeedBuiltIns {
		if err := seed.Channels(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in channels: %w", err)
		}
	}

	return db, r, nil
}
