package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Wallet modes accepted by WALLET_MODE.
const (
	WalletNone  = "none"
	WalletRPC   = "rpc"
	WalletLocal = "local"
)

type Config struct {
	Port string

	StorageDriver string
	StorageFile   string
	SQLitePath    string
	DatabaseURL   string
	RedisURL      string
	RedisPrefix   string

	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	WalletMode         string
	WalletRPCURL       string
	WalletPollInterval time.Duration
	WalletKeyAccount   string
	WalletTimeout      time.Duration
	PayoutFallback     string

	TelegramToken  string
	TelegramChatID int64

	Network wallet.Network
}

// fileOverlay is the optional YAML document named by CONFIG_FILE.
type fileOverlay struct {
	Network *wallet.Network `yaml:"network"`
}

// Load reads environment variables, optionally from a .env file if present,
// then applies CONFIG_FILE when set.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", DriverFile)),
		StorageFile:        getEnv("STORAGE_FILE", "data/pot-store.json"),
		SQLitePath:         getEnv("SQLITE_PATH", "data/pot.db"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:        getEnv("REDIS_PREFIX", "pot:"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:          getEnv("JWT_ISSUER", "proof-of-talent"),
		JWTTTLMinutes:      getEnvInt("JWT_TTL_MINUTES", 60),
		WalletMode:         strings.ToLower(getEnv("WALLET_MODE", WalletNone)),
		WalletRPCURL:       getEnv("WALLET_RPC_URL", "http://127.0.0.1:8545"),
		WalletPollInterval: getEnvDuration("WALLET_POLL_INTERVAL", 2*time.Second),
		WalletKeyAccount:   getEnv("WALLET_KEY_ACCOUNT", "dev"),
		WalletTimeout:      getEnvDuration("WALLET_TIMEOUT", 2*time.Minute),
		PayoutFallback:     getEnv("PAYOUT_FALLBACK_ADDRESS", "0x1234567890123456789012345678901234567890"),
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:     int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),
		Network:            wallet.Sepolia,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(b, &overlay); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if overlay.Network != nil {
		c.Network = *overlay.Network
	}
	return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case DriverMemory, DriverFile, DriverSQLite, DriverRedis:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	switch c.WalletMode {
	case WalletNone, WalletRPC, WalletLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown WALLET_MODE %q", c.WalletMode))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWTTTLMinutes <= 0 {
		errs = append(errs, errors.New("JWT_TTL_MINUTES must be positive"))
	}
	if c.WalletTimeout <= 0 {
		errs = append(errs, errors.New("WALLET_TIMEOUT must be positive"))
	}
	if !wallet.ValidAddress(c.PayoutFallback) {
		errs = append(errs, fmt.Errorf("PAYOUT_FALLBACK_ADDRESS %q is not an address", c.PayoutFallback))
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}
	if c.Network.ChainID == 0 {
		errs = append(errs, errors.New("network chain_id must be set"))
	}
	return errors.Join(errs...)
}

// TelegramEnabled reports whether the Telegram sink is configured.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
