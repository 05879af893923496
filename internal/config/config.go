package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	App         AppConfig
	Marketplace MarketplaceConfig
	Solana      SolanaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string
}

// MarketplaceConfig holds auction marketplace settings
type MarketplaceConfig struct {
	// Denom is the reserve currency used for staking and payment.
	Denom string
	// OwnerAddress is the marketplace owner recorded in the state singleton.
	OwnerAddress string
	// DefaultWindowBlocks is the bidding window applied when a listing is
	// created without an explicit end height (roughly one week of blocks).
	DefaultWindowBlocks int64
}

// SolanaConfig holds blockchain collaborator settings
type SolanaConfig struct {
	Network                string
	EscrowProgramID        string
	AssetProgramID         string
	ServerWalletPrivateKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "auction_house"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Marketplace: MarketplaceConfig{
			Denom:               getEnv("MARKET_DENOM", "STAKE"),
			OwnerAddress:        getEnv("MARKET_OWNER_ADDRESS", ""),
			DefaultWindowBlocks: getEnvInt64("MARKET_DEFAULT_WINDOW_BLOCKS", 100800),
		},
		Solana: SolanaConfig{
			Network:                getEnv("SOLANA_NETWORK", "devnet"),
			EscrowProgramID:        getEnv("ESCROW_PROGRAM_ID", ""),
			AssetProgramID:         getEnv("ASSET_PROGRAM_ID", ""),
			ServerWalletPrivateKey: getEnv("SERVER_WALLET_PRIVATE_KEY", ""),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Marketplace.DefaultWindowBlocks <= 0 {
		return nil, fmt.Errorf("MARKET_DEFAULT_WINDOW_BLOCKS must be positive")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt64 gets an integer environment variable with a fallback default
func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
