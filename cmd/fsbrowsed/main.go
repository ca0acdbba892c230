package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsbrowse/fsbrowse/internal/config"
	"github.com/fsbrowse/fsbrowse/internal/listing"
	"github.com/fsbrowse/fsbrowse/internal/nav"
	"github.com/fsbrowse/fsbrowse/internal/server"
	"github.com/lmittmann/tint"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0

	envFile = flag.String("env", ".env", "path to the configuration env file")
	rootDir = flag.String("root", "", "initial root directory (defaults to the server's own directory)")
)

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()
}

// initialRoot resolves the directory the server starts browsing from: an
// explicit flag wins, then the binary's own directory, then the working
// directory.
func initialRoot() string {
	if rootDir != nil && *rootDir != "" {
		return *rootDir
	}

	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "/"
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Parse()
	setupLogging(slog.LevelInfo)
	setupSignalHandlers(cancel)

	configHandler := config.NewHandler(&config.GodotenvProvider{})
	cfg := configHandler.Load(*envFile)
	setupLogging(cfg.LogLevel)

	root := initialRoot()
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		slog.Error("Initial root is not a usable directory.", "root", root, "err", err)
		ExitCode = 1

		return
	}

	srv := server.New(cfg, nav.NewNavigator(root), listing.NewLister())

	if err := srv.ListenAndServe(ctx); err != nil {
		slog.Error("Server failure.", "err", err)
		ExitCode = 1
	}
}
