// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"

	"onchat/internal/chain"
	"onchat/internal/fees"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBSchemaMode   string `mapstructure:"DB_SCHEMA_MODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DBReadHost string `mapstructure:"DB_READ_HOST"`
	DBReadPort string `mapstructure:"DB_READ_PORT"`

	DBMaxOpenConns                int  `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int  `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int  `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBAutoMigrateAllowDestructive bool `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	// Ledger bootstrap values. Admin and treasury seed the singleton state
	// row on first migration; fee strings are ether-denominated decimals.
	AdminAddress          string `mapstructure:"ADMIN_ADDRESS"`
	TreasuryWallet        string `mapstructure:"TREASURY_WALLET"`
	ChannelCreationFeeEth string `mapstructure:"CHANNEL_CREATION_FEE_ETH"`
	MessageFeeBaseEth     string `mapstructure:"MESSAGE_FEE_BASE_ETH"`
	MessageFeePerByteEth  string `mapstructure:"MESSAGE_FEE_PER_BYTE_ETH"`

	SignatureTTLSeconds int `mapstructure:"SIGNATURE_TTL_SECONDS"`

	// SeedBuiltinChannels registers the built-in channels on startup.
	// Off by default so production ledgers only ever hold paid-for state.
	SeedBuiltinChannels bool `mapstructure:"SEED_BUILTIN_CHANNELS"`

	// FeatureFlags is a comma-separated key=value list, e.g.
	// "event_stream_v2=on,directory_cache=25%".
	FeatureFlags string `mapstructure:"FEATURE_FLAGS"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8483")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "onchat")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	// Development defaults are the first two well-known anvil/hardhat
	// accounts so local wallets can drive the admin surface out of the box.
	viper.SetDefault("ADMIN_ADDRESS", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	viper.SetDefault("TREASURY_WALLET", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	viper.SetDefault("CHANNEL_CREATION_FEE_ETH", "0.0025")
	viper.SetDefault("MESSAGE_FEE_BASE_ETH", "0.00001")
	viper.SetDefault("MESSAGE_FEE_PER_BYTE_ETH", "0.0000002")
	viper.SetDefault("SIGNATURE_TTL_SECONDS", 300)
	viper.SetDefault("SEED_BUILTIN_CHANNELS", false)
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if !chain.IsValidAddress(c.AdminAddress) || chain.IsZeroAddress(c.AdminAddress) {
		return errors.New("ADMIN_ADDRESS must be a non-zero EVM address")
	}
	if !chain.IsValidAddress(c.TreasuryWallet) || chain.IsZeroAddress(c.TreasuryWallet) {
		return errors.New("TREASURY_WALLET must be a non-zero EVM address")
	}
	if _, err := fees.EtherToWei(c.ChannelCreationFeeEth); err != nil {
		return fmt.Errorf("CHANNEL_CREATION_FEE_ETH: %w", err)
	}
	if _, err := fees.EtherToWei(c.MessageFeeBaseEth); err != nil {
		return fmt.Errorf("MESSAGE_FEE_BASE_ETH: %w", err)
	}
	if _, err := fees.EtherToWei(c.MessageFeePerByteEth); err != nil {
		return fmt.Errorf("MESSAGE_FEE_PER_BYTE_ETH: %w", err)
	}
	if c.SignatureTTLSeconds <= 0 {
		return errors.New("SIGNATURE_TTL_SECONDS must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.AdminAddress == "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266" {
			return errors.New("ADMIN_ADDRESS must be changed from the development default in production")
		}
		if c.TreasuryWallet == "0x70997970C51812dc3A010C7d01b50e0d17dc79C8" {
			return errors.New("TREASURY_WALLET must be changed from the development default in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
