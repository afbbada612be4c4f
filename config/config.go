package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"vnclub/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Primary Discord guild ID for command registration

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Reconciliation configuration
	ReconcileInterval    time.Duration // How often role rewards are reconciled
	ReconcileConcurrency int           // Max parallel role API calls per guild

	// Manager configuration
	ManagerDiscordIDs []int64 // Discord IDs allowed to reward points and delete logs

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// VNDB configuration
	VNDBBaseURL string // Base URL of the VNDB kana API

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		ReconcileInterval:    5 * time.Minute,
		ReconcileConcurrency: 4,

		NATSServers: os.Getenv("NATS_SERVERS"),

		VNDBBaseURL: getEnvWithDefault("VNDB_BASE_URL", "https://api.vndb.org/kana"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if interval := os.Getenv("RECONCILE_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil && parsed > 0 {
			config.ReconcileInterval = parsed
		}
	}
	if concurrency := os.Getenv("RECONCILE_CONCURRENCY"); concurrency != "" {
		if parsed, err := strconv.Atoi(concurrency); err == nil && parsed > 0 {
			config.ReconcileConcurrency = parsed
		}
	}

	// Parse manager Discord IDs
	if managerIDs := os.Getenv("MANAGER_DISCORD_IDS"); managerIDs != "" {
		idStrings := strings.Split(managerIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.ManagerDiscordIDs = append(config.ManagerDiscordIDs, id)
				}
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		ManagerDiscordIDs:    []int64{999999, 999991, 999998},
		ReconcileInterval:    5 * time.Minute,
		ReconcileConcurrency: 4,
		VNDBBaseURL:          "https://api.vndb.org/kana",
	}
}
