package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/lysyi3m/mensa-feed/app/api"
	"github.com/lysyi3m/mensa-feed/app/cfg"
	"github.com/lysyi3m/mensa-feed/app/feed"
	"github.com/lysyi3m/mensa-feed/app/mensa"
	"github.com/lysyi3m/mensa-feed/app/openmensa"
	"github.com/lysyi3m/mensa-feed/app/schema"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	initSlog(appCfg.Debug)

	canteens := feed.NewCanteenCache(appCfg.CanteensDir)
	if err := canteens.Run(); err != nil {
		fatal("Failed to load canteens", err)
	}
	slog.Info("Canteens loaded", "count", canteens.GetCanteenCount())

	validator, err := loadValidator(appCfg.SchemaFile)
	if err != nil {
		fatal("Failed to load schema", err)
	}

	fetcher := mensa.NewFetcher(appCfg.UpstreamURL, appCfg.UserAgent, appCfg.Timeout)
	publisher := feed.NewPublisher(
		canteens,
		fetcher,
		mensa.NewExtractor(nil),
		feed.NewGenerator(openmensa.Version),
		validator,
	)

	if appCfg.Dump != "" {
		doc, err := publisher.Run(context.Background(), appCfg.Dump, nil)
		if err != nil {
			fatal("Failed to generate feed", err, "canteen", appCfg.Dump)
		}
		fmt.Println(doc)
		return
	}

	handler := api.NewHandler(canteens, publisher, appCfg.Version)
	addr := net.JoinHostPort(appCfg.Host, appCfg.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", addr, "version", appCfg.Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Mensa feed server shutdown complete")
}

func initSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	}))
	slog.SetDefault(logger)
}

func loadValidator(path string) (*schema.Validator, error) {
	if path == "" {
		return schema.Default()
	}
	return schema.LoadFile(path)
}

func fatal(msg string, err error, args ...any) {
	slog.Error(msg, append(args, "error", err)...)
	os.Exit(1)
}
