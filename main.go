package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.bug.st/serial"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/metrics"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/session"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("session-max-age", "30m", "Idle time before a session is dropped")
	flag.String("serial-port", "", "Serial port of a locally attached modem (optional)")
	flag.Int("baud-rate", 115200, "Baud rate for the local serial modem")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configPath), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	store := session.NewStore()

	// A locally attached modem becomes a pre-registered session so the
	// API works without a router hop.
	if config.SerialPort != "" {
		dev, err := session.NewDevice(context.Background(), session.SerialDialer{
			PortName: config.SerialPort,
			Mode:     &serial.Mode{BaudRate: config.BaudRate},
		})
		if err != nil {
			logger.Error("Failed to attach local modem", "port", config.SerialPort, "error", err)
			os.Exit(1)
		}
		entry, err := store.Add(dev, "local", "", config.SerialPort, 0)
		if err != nil {
			logger.Error("Failed to register local modem session", "error", err)
			os.Exit(1)
		}
		logger.Info("Local modem attached", "port", config.SerialPort, "token", entry.Token)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(store))

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger:  logger.With("component", "server"),
			Store:   store,
			Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		},
	}

	// Janitor for idle sessions
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				if n := store.Cleanup(config.SessionMaxAge); n > 0 {
					logger.Info("Dropped idle sessions", "count", n)
				}
			}
		}
	}()

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	stopJanitor()

	logger.Info("Closing sessions")
	store.Cleanup(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}
