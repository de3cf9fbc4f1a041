package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTAccessTTL   = "24h"
	defaultSlotTimes      = "09:00,10:00,11:00,13:00,14:00,15:00,16:00,17:00"
	defaultSlotCapacity   = "3"
	defaultGatewayBaseURL = "https://app.sandbox.midtrans.com"
	defaultGatewayTimeout = "10s"
	defaultListenAddr     = ":8080"
)

// RuntimeConfig is the full environment-driven configuration of the API
// process.
type RuntimeConfig struct {
	AppEnv      string
	ListenAddr  string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	// Slot allocator: the schedulable times of a working day and the
	// default concurrent-booking capacity per (date, time).
	SlotTimes           []string
	DefaultSlotCapacity int

	// Payment gateway credentials.
	GatewayServerKey string
	GatewayBaseURL   string
	GatewayTimeout   time.Duration
}

func Load() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.SlotTimes = splitCSV(getEnv("SLOT_TIMES", defaultSlotTimes))
	if len(cfg.SlotTimes) == 0 {
		return nil, fmt.Errorf("SLOT_TIMES must list at least one time")
	}
	for _, t := range cfg.SlotTimes {
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, fmt.Errorf("SLOT_TIMES entry %q is not HH:MM", t)
		}
	}

	cfg.DefaultSlotCapacity, err = parseIntEnv("SLOT_CAPACITY", defaultSlotCapacity)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultSlotCapacity < 1 {
		return nil, fmt.Errorf("SLOT_CAPACITY must be >= 1")
	}

	cfg.GatewayServerKey = strings.TrimSpace(os.Getenv("GATEWAY_SERVER_KEY"))
	if cfg.AppEnv == "prod" && cfg.GatewayServerKey == "" {
		return nil, fmt.Errorf("GATEWAY_SERVER_KEY must be set in production")
	}
	cfg.GatewayBaseURL = getEnv("GATEWAY_BASE_URL", defaultGatewayBaseURL)
	cfg.GatewayTimeout, err = parseDurationEnv("GATEWAY_TIMEOUT", defaultGatewayTimeout)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func parseIntEnv(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
