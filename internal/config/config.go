package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	StaffToken      string
	LogLevel        string
	ShutdownTimeout time.Duration

	Gateway GatewayConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TelegramAPIURL        string
	TelegramChatID        string
	TelegramWebhookSecret string
	NotifyWorkers         int
	NotifyQueueSize       int
}

// GatewayConfig carries payment gateway credentials and endpoints. Values are opaque.
type GatewayConfig struct {
	TokenURL   string
	BasicAuth  string
	Username   string
	Password   string
	ClientID   string
	MerchantID string
	Currency   string
	SaltHold   string
	SaltPay    string
	HoldURL    string
	PayURL     string
	StatusURL  string
	Timeout    time.Duration
	TokenTTL   time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultLogLevel        = "info"
	defaultJWTSecret       = "change-me-in-production"
	defaultShutdownTimeout = 10 * time.Second
	defaultGatewayTimeout  = 15 * time.Second
	defaultTokenTTL        = 17560 * time.Second
	defaultCurrency        = "860"
	defaultNotifyWorkers   = 2
	defaultNotifyQueueSize = 128
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		JWTSecret:       getString(lookup, "JWT_SECRET", defaultJWTSecret),
		StaffToken:      getString(lookup, "STAFF_TOKEN", ""),
		LogLevel:        getString(lookup, "LOG_LEVEL", defaultLogLevel),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		Gateway: GatewayConfig{
			TokenURL:   getString(lookup, "OAUTH_TOKEN_URL", ""),
			BasicAuth:  getString(lookup, "OAUTH_BASIC_AUTH", ""),
			Username:   getString(lookup, "OAUTH_USERNAME", ""),
			Password:   getString(lookup, "OAUTH_PASSWORD", ""),
			ClientID:   getString(lookup, "PAYMENT_CLIENT_ID", ""),
			MerchantID: getString(lookup, "PAYMENT_MERCHANT_ID", ""),
			Currency:   getString(lookup, "PAYMENT_CURRENCY", defaultCurrency),
			SaltHold:   getString(lookup, "PAYMENT_SALT_HOLD", ""),
			SaltPay:    getString(lookup, "PAYMENT_SALT_PAY", ""),
			HoldURL:    getString(lookup, "PAYMENT_HOLD_URL", ""),
			PayURL:     getString(lookup, "PAYMENT_PAY_URL", ""),
			StatusURL:  getString(lookup, "PAYMENT_STATUS_URL", ""),
			Timeout:    getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
			TokenTTL:   getDuration(lookup, "GATEWAY_TOKEN_TTL", defaultTokenTTL),
		},
		RedisAddr:             getString(lookup, "REDIS_ADDR", ""),
		RedisPassword:         getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:               getInt(lookup, "REDIS_DB", 0),
		TelegramAPIURL:        getString(lookup, "TELEGRAM_API_URL", ""),
		TelegramChatID:        getString(lookup, "TELEGRAM_CHAT_ID", ""),
		TelegramWebhookSecret: getString(lookup, "TELEGRAM_WEBHOOK_SECRET", ""),
		NotifyWorkers:         getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
		NotifyQueueSize:       getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
	}

	fs := flag.NewFlagSet("prisonmarket", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		gatewayTimeoutStr  = cfg.Gateway.Timeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying contact tokens")
	fs.StringVar(&cfg.StaffToken, "staff-token", cfg.StaffToken, "Shared token for staff endpoints")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Payment gateway request timeout")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the shared gateway token cache")
	fs.StringVar(&cfg.TelegramAPIURL, "telegram-api", cfg.TelegramAPIURL, "Telegram bot API base URL")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of notification workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.Gateway.Timeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	secrets := []struct {
		env    string
		target *string
	}{
		{"JWT_SECRET_FILE", &cfg.JWTSecret},
		{"STAFF_TOKEN_FILE", &cfg.StaffToken},
		{"OAUTH_PASSWORD_FILE", &cfg.Gateway.Password},
		{"OAUTH_BASIC_AUTH_FILE", &cfg.Gateway.BasicAuth},
		{"PAYMENT_SALT_HOLD_FILE", &cfg.Gateway.SaltHold},
		{"PAYMENT_SALT_PAY_FILE", &cfg.Gateway.SaltPay},
		{"TELEGRAM_WEBHOOK_SECRET_FILE", &cfg.TelegramWebhookSecret},
	}
	for _, s := range secrets {
		if path, ok := lookup(s.env); ok && path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", strings.ToLower(s.env), err)
			}
			*s.target = strings.TrimRight(string(content), "\r\n")
		}
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Gateway.Timeout <= 0 {
		cfg.Gateway.Timeout = defaultGatewayTimeout
	}

	if cfg.Gateway.TokenTTL <= 0 {
		cfg.Gateway.TokenTTL = defaultTokenTTL
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}

	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"database URI", cfg.DatabaseURI},
		{"gateway token URL", cfg.Gateway.TokenURL},
		{"gateway hold URL", cfg.Gateway.HoldURL},
		{"gateway pay URL", cfg.Gateway.PayURL},
		{"gateway status URL", cfg.Gateway.StatusURL},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(strings.Join(missing, ", ") + " must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
