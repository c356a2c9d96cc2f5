package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// MinSessionSecretLength is the shortest accepted HMAC key
const MinSessionSecretLength = 16

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL   string
	DatabaseName  string
	StorageDriver string // "postgres" or "memory"
	AutoMigrate   bool

	// HTTP configuration
	HTTPAddr        string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Sessions
	SessionSecret string
	CookieSecure  bool
	BcryptCost    int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Discord big-win announcements
	DiscordToken     string
	DiscordChannelID string
	BigWinThreshold  int64 // cents

	// NATS event forwarding
	NATSURL           string
	NATSSubjectPrefix string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	config := &Config{
		DatabaseURL:   getenv("DATABASE_URL"),
		DatabaseName:  getenv("DATABASE_NAME"),
		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER")),
		AutoMigrate:   getenv("AUTO_MIGRATE") == "true",

		HTTPAddr:        getenv("HTTP_ADDR"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		SessionSecret: getenv("SESSION_SECRET"),
		CookieSecure:  getenv("COOKIE_SECURE") == "true",

		LogLevel:  getenv("LOG_LEVEL"),
		LogFormat: getenv("LOG_FORMAT"),

		DiscordToken:     getenv("DISCORD_TOKEN"),
		DiscordChannelID: getenv("DISCORD_CHANNEL_ID"),
		BigWinThreshold:  100000, // 1000.00 default

		NATSURL:           getenv("NATS_URL"),
		NATSSubjectPrefix: getenv("NATS_SUBJECT_PREFIX"),

		Environment: getenv("ENVIRONMENT"),
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.StorageDriver == "" {
		config.StorageDriver = StoragePostgres
	}

	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, origin)
			}
		}
	}

	if threshold := getenv("BIG_WIN_THRESHOLD"); threshold != "" {
		parsed, err := strconv.ParseInt(threshold, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("BIG_WIN_THRESHOLD must be a non-negative number of cents, got %q", threshold)
		}
		config.BigWinThreshold = parsed
	}
	if cost := getenv("BCRYPT_COST"); cost != "" {
		parsed, err := strconv.Atoi(cost)
		if err != nil {
			return nil, fmt.Errorf("BCRYPT_COST must be an integer, got %q", cost)
		}
		config.BcryptCost = parsed
	}
	for key, target := range map[string]*time.Duration{
		"REQUEST_TIMEOUT":  &config.RequestTimeout,
		"SHUTDOWN_TIMEOUT": &config.ShutdownTimeout,
	} {
		if raw := getenv(key); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil || parsed <= 0 {
				return nil, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
			}
			*target = parsed
		}
	}

	switch config.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, config.StorageDriver)
	}
	switch config.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", config.LogFormat)
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.StorageDriver == StoragePostgres && config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if len(config.SessionSecret) < MinSessionSecretLength {
			return nil, fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLength)
		}
	}

	return config, nil
}

// DiscordEnabled reports whether big-win announcements are configured
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != ""
}

// NATSEnabled reports whether event forwarding is configured
func (c *Config) NATSEnabled() bool {
	return c.NATSURL != ""
}
