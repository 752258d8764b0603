package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// AppConfig holds every tunable of the station daemon. Defaults mirror the
// constants baked into the device firmware this daemon stands in for.
type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level

	// Upstream endpoints for the two-stage fetch.
	GeocodeBaseURL  string
	ForecastBaseURL string
	UserAgent       string
	HTTPTimeout     time.Duration

	// InsecureTLS skips certificate verification on upstream calls. The
	// firmware never validated certificates; the switch is explicit so the
	// weakness lives in config rather than buried in a transport.
	InsecureTLS bool

	// RefreshInterval controls how often the dashboard data is refetched.
	RefreshInterval time.Duration

	// TickQuantum is the fixed sleep inside every scheduler tick.
	TickQuantum time.Duration

	// BootConnectTimeout bounds the initial link-up wait at boot.
	BootConnectTimeout time.Duration

	// Config portal (the "access point" surface of the device).
	PortalAddr        string
	PortalSSID        string
	PortalIdleTimeout time.Duration

	// ProbeAddr is dialled to decide whether the link is up.
	ProbeAddr    string
	ProbeTimeout time.Duration

	// Persisted settings database and the first-boot place name.
	DBPath        string
	FallbackPlace string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.GeocodeBaseURL = getenvDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org/search")
	cfg.ForecastBaseURL = getenvDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.UserAgent = getenvDefault("USER_AGENT", "roundstation/1.2")

	cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.InsecureTLS = getenvBool("INSECURE_TLS", true)

	cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.TickQuantum, err = getenvDuration("TICK_QUANTUM", "5ms")
	if err != nil {
		return nil, err
	}
	cfg.BootConnectTimeout, err = getenvDuration("BOOT_CONNECT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg.PortalAddr = getenvDefault("PORTAL_ADDR", ":8095")
	cfg.PortalSSID = getenvDefault("PORTAL_SSID", "RoundStation-Setup")
	cfg.PortalIdleTimeout, err = getenvDuration("PORTAL_IDLE_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}

	cfg.ProbeAddr = getenvDefault("PROBE_ADDR", "1.1.1.1:53")
	cfg.ProbeTimeout, err = getenvDuration("PROBE_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}

	cfg.DBPath = getenvDefault("DB_PATH", "roundstation.db")
	cfg.FallbackPlace = getenvDefault("FALLBACK_PLACE", "Prague")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	raw := getenvDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
