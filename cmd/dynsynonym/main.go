// Package main implements the entry point for the dynsynonym daemon: a
// standalone host for the dynamically-reloadable synonym engine that
// polls configured rule sources and exposes metrics and health over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/engine"
	"github.com/c360/dynsynonym/filter"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "dynsynonym"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Load and validate configuration
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid", "filters", len(cfg.Filters))
		return nil
	}

	// Build the engine from the configured filter definitions
	controller, err := setupEngine(cfg, logger)
	if err != nil {
		return err
	}

	// Run with signal handling
	return runWithSignalHandling(controller, cliCfg)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting dynsynonym (dynamic synonym reloader)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// setupEngine creates the controller, adds every configured filter
// definition, and registers the token filter with bleve.
func setupEngine(cfg *config.Config, logger *slog.Logger) (*engine.Controller, error) {
	controller, err := engine.New(cfg.Engine, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	for name, fc := range cfg.Filters {
		if err := controller.AddDefinition(name, fc); err != nil {
			return nil, fmt.Errorf("add filter definition %s: %w", name, err)
		}
	}

	if err := filter.RegisterWith(controller); err != nil {
		return nil, fmt.Errorf("register token filter: %w", err)
	}

	return controller, nil
}

// runWithSignalHandling starts the engine and HTTP server and handles
// shutdown signals.
func runWithSignalHandling(controller *engine.Controller, cliCfg *CLIConfig) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := controller.Start(signalCtx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	httpServer := startHTTPServer(controller, cliCfg.HTTPPort)

	slog.Info("dynsynonym started successfully")

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	return shutdown(controller, httpServer, cliCfg.ShutdownTimeout)
}

// startHTTPServer serves /metrics and /healthz. A port of 0 disables the
// server.
func startHTTPServer(controller *engine.Controller, port int) *http.Server {
	if port == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		controller.MetricsRegistry().PrometheusRegistry(),
		promhttp.HandlerOpts{},
	))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		status := controller.Health()
		w.Header().Set("Content-Type", "application/json")
		// Degraded still serves the last good maps, so only a fully
		// unhealthy subsystem fails the probe.
		if status.IsUnhealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// shutdown stops the HTTP server and the engine within the timeout
func shutdown(controller *engine.Controller, httpServer *http.Server, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown failed", "error", err)
		}
	}

	if err := controller.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}

	slog.Info("dynsynonym shutdown complete")
	return nil
}
