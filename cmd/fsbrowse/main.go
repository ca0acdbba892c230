package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/fsbrowse/fsbrowse/internal/client"
	"github.com/fsbrowse/fsbrowse/internal/config"
	"github.com/fsbrowse/fsbrowse/internal/ui"
	"github.com/lmittmann/tint"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0

	envFile = flag.String("env", ".env", "path to the configuration env file")
)

func setupLogging(level slog.Level) {
	// Logs go to stderr; stdout belongs to the interactive UI.
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	flag.Parse()
	setupLogging(slog.LevelWarn)

	configHandler := config.NewHandler(&config.GodotenvProvider{})
	cfg := configHandler.Load(*envFile)

	wireClient, err := client.Dial(cfg.Host, cfg.Port)
	if err != nil {
		slog.Error("Failed to connect to the server.", "err", err, "host", cfg.Host, "port", cfg.Port)
		ExitCode = 1

		return
	}
	defer wireClient.Close() //nolint:errcheck

	uiHandler := ui.NewHandler(wireClient)

	if err := uiHandler.Launch(); err != nil {
		slog.Error("UI failure.", "err", err)
		ExitCode = 1
	}
}
