// Package config loads the host/port/log-level settings shared by the server
// and the browsing client.
package config

import (
	"log/slog"
	"strconv"
	"strings"
)

const (
	// DefaultHost is the listen/dial host when none is configured.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the listen/dial port when none is configured.
	DefaultPort = 5050
)

// Config holds the settings of one process.
type Config struct {
	Host     string
	Port     int
	LogLevel slog.Level
}

// Default returns the configuration used when no env file is present.
func Default() Config {
	return Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		LogLevel: slog.LevelInfo,
	}
}

type envProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Handler resolves a [Config] through an environment file provider.
type Handler struct {
	provider envProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(provider envProvider) *Handler {
	return &Handler{provider: provider}
}

// Load reads the given env files and merges their values over [Default].
// A missing or unreadable file is not fatal; malformed values fall back to
// their defaults with a warning.
func (h *Handler) Load(filenames ...string) Config {
	cfg := Default()

	env, err := h.provider.Read(filenames...)
	if err != nil {
		slog.Debug("No usable configuration file, using defaults.", "err", err)

		return cfg
	}

	if value := env["HOST"]; value != "" {
		cfg.Host = value
	}

	if value := env["PORT"]; value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			slog.Warn("Ignoring invalid port setting.", "port", value)
		} else {
			cfg.Port = port
		}
	}

	if value := env["LOG_LEVEL"]; value != "" {
		level, ok := parseLevel(value)
		if !ok {
			slog.Warn("Ignoring invalid log level setting.", "level", value)
		} else {
			cfg.LogLevel = level
		}
	}

	return cfg
}

func parseLevel(value string) (slog.Level, bool) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
