package database

import (
	"fmt"
	"time"

	"onchat/internal/config"
	"onchat/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// readReplica is the optional read-only connection. It stays nil unless a
// replica host is configured, and repositories fall back to the primary.
var readReplica *gorm.DB

// GetReadDB returns the read replica connection, or nil if none is configured.
func GetReadDB() *gorm.DB {
	return readReplica
}

// ConnectReadReplica opens the read replica connection when DB_READ_HOST is
// set. Failures are logged but not fatal: reads fall back to the primary.
func ConnectReadReplica(cfg *config.Config) {
	if cfg.DBReadHost == "" {
		return
	}

	port := cfg.DBReadPort
	if port == "" {
		port = cfg.DBPort
	}
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBReadHost,
		port,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		sslMode,
	)

	gormLogger := &CustomGormLogger{
		logger: middleware.Logger,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		middleware.Logger.Warn("Read replica unavailable, reads will use the primary", "error", err.Error())
		return
	}
	if err := configurePool(db, cfg); err != nil {
		middleware.Logger.Warn("Read replica pool setup failed, reads will use the primary", "error", err.Error())
		return
	}

	readReplica = db
	middleware.Logger.Info("Read replica connected")
}
