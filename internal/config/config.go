package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress          string
	APIBaseURL          string
	APIToken            string
	UserID              string
	RealtimeURL         string
	DatabaseURI         string
	ShippingTableFile   string
	QuoteValidity       time.Duration
	RefreshDebounce     time.Duration
	ReconnectMaxBackoff time.Duration
	ShutdownTimeout     time.Duration
	LogLevel            string
}

const (
	defaultRunAddress          = ":8080"
	defaultQuoteValidity       = 72 * time.Hour
	defaultRefreshDebounce     = 250 * time.Millisecond
	defaultReconnectMaxBackoff = 30 * time.Second
	defaultShutdownTimeout     = 10 * time.Second
	defaultLogLevel            = "info"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		APIBaseURL:          getString(lookup, "MARKETPLACE_API_URL", ""),
		APIToken:            getString(lookup, "MARKETPLACE_API_TOKEN", ""),
		UserID:              getString(lookup, "MARKETPLACE_USER_ID", ""),
		RealtimeURL:         getString(lookup, "MARKETPLACE_WS_URL", ""),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		ShippingTableFile:   getString(lookup, "SHIPPING_TABLE_FILE", ""),
		QuoteValidity:       getDuration(lookup, "QUOTE_VALIDITY", defaultQuoteValidity),
		RefreshDebounce:     getDuration(lookup, "REFRESH_DEBOUNCE", defaultRefreshDebounce),
		ReconnectMaxBackoff: getDuration(lookup, "RECONNECT_MAX_BACKOFF", defaultReconnectMaxBackoff),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("partsync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		validityStr = cfg.QuoteValidity.String()
		debounceStr = cfg.RefreshDebounce.String()
		backoffStr  = cfg.ReconnectMaxBackoff.String()
		shutdownStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "Marketplace API base URL")
	fs.StringVar(&cfg.APIToken, "api-token", cfg.APIToken, "Marketplace API token")
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "Authenticated customer identifier")
	fs.StringVar(&cfg.RealtimeURL, "ws-url", cfg.RealtimeURL, "Realtime channel websocket URL")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN for the snapshot cache (optional)")
	fs.StringVar(&cfg.ShippingTableFile, "shipping-table", cfg.ShippingTableFile, "JSON shipping rate card (optional)")
	fs.StringVar(&validityStr, "quote-validity", validityStr, "Quote validity window")
	fs.StringVar(&debounceStr, "refresh-debounce", debounceStr, "Delay before a scheduled refresh fires")
	fs.StringVar(&backoffStr, "reconnect-backoff", backoffStr, "Maximum websocket reconnect backoff")
	fs.StringVar(&shutdownStr, "shutdown-timeout", shutdownStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.QuoteValidity, err = time.ParseDuration(validityStr); err != nil {
		return nil, fmt.Errorf("invalid quote validity: %w", err)
	}

	if cfg.RefreshDebounce, err = time.ParseDuration(debounceStr); err != nil {
		return nil, fmt.Errorf("invalid refresh debounce: %w", err)
	}

	if cfg.ReconnectMaxBackoff, err = time.ParseDuration(backoffStr); err != nil {
		return nil, fmt.Errorf("invalid reconnect backoff: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if tokenFile, ok := lookup("MARKETPLACE_API_TOKEN_FILE"); ok && tokenFile != "" {
		content, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read api token file: %w", err)
		}
		cfg.APIToken = strings.TrimSpace(string(content))
	}

	if cfg.QuoteValidity <= 0 {
		cfg.QuoteValidity = defaultQuoteValidity
	}

	if cfg.RefreshDebounce <= 0 {
		cfg.RefreshDebounce = defaultRefreshDebounce
	}

	if cfg.ReconnectMaxBackoff <= 0 {
		cfg.ReconnectMaxBackoff = defaultReconnectMaxBackoff
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("marketplace API URL must be provided")
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("marketplace API token must be provided")
	}

	if cfg.UserID == "" {
		return nil, fmt.Errorf("marketplace user identifier must be provided")
	}

	if cfg.RealtimeURL == "" {
		return nil, fmt.Errorf("realtime websocket URL must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
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
