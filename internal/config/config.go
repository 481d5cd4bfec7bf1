// Package config provides binary configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/waozixyz/paywall/render"
	"github.com/waozixyz/paywall/screen"
)

// Config holds the settings shared by the paywall binaries.
type Config struct {
	LogLevel  string
	LogFormat string // json or text
	Locale    string
	Backend   screen.Backend
	Viewport  render.Size

	RetryDelay   time.Duration
	MediaTimeout time.Duration
	// MediaRate caps image fetches per second; zero is unlimited.
	MediaRate  float64
	BrowserTLS bool
	AssetDir   string

	// TraceEndpoint enables OTLP trace export when set.
	TraceEndpoint string
	ServiceName   string
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		LogLevel:      envOr("PAYWALL_LOG_LEVEL", "info"),
		LogFormat:     envOr("PAYWALL_LOG_FORMAT", "text"),
		Locale:        envOr("PAYWALL_LOCALE", "en"),
		AssetDir:      os.Getenv("PAYWALL_ASSET_DIR"),
		TraceEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:   envOr("OTEL_SERVICE_NAME", "paywall"),
	}

	var err error
	if cfg.Backend, err = screen.ParseBackend(os.Getenv("PAYWALL_BACKEND")); err != nil {
		return Config{}, fmt.Errorf("config: invalid PAYWALL_BACKEND: %w", err)
	}
	if cfg.Viewport, err = ParseViewport(envOr("PAYWALL_VIEWPORT", "390x844")); err != nil {
		return Config{}, fmt.Errorf("config: invalid PAYWALL_VIEWPORT: %w", err)
	}
	if cfg.RetryDelay, err = durationEnv("PAYWALL_RETRY_DELAY", screen.DefaultRetryDelay); err != nil {
		return Config{}, err
	}
	if cfg.MediaTimeout, err = durationEnv("PAYWALL_MEDIA_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("PAYWALL_MEDIA_RATE"); v != "" {
		if cfg.MediaRate, err = strconv.ParseFloat(v, 64); err != nil || cfg.MediaRate < 0 {
			return Config{}, fmt.Errorf("config: invalid PAYWALL_MEDIA_RATE %q", v)
		}
	}
	if v := os.Getenv("PAYWALL_BROWSER_TLS"); v != "" {
		if cfg.BrowserTLS, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("config: invalid PAYWALL_BROWSER_TLS %q", v)
		}
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("config: invalid PAYWALL_LOG_FORMAT %q (must be json or text)", cfg.LogFormat)
	}
	return cfg, nil
}

// ParseViewport reads a WIDTHxHEIGHT size.
func ParseViewport(s string) (render.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return render.Size{}, fmt.Errorf("viewport %q is not WIDTHxHEIGHT", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return render.Size{}, fmt.Errorf("viewport width %q: %w", w, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return render.Size{}, fmt.Errorf("viewport height %q: %w", h, err)
	}
	if width <= 0 || height <= 0 {
		return render.Size{}, fmt.Errorf("viewport %q must be positive", s)
	}
	return render.Size{W: width, H: height}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: invalid %s %q", key, v)
	}
	return d, nil
}
