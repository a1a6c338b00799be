// Package app boots the game host: logging router, telemetry counters,
// spellbook, hub, and the HTTP listener, all configured from the
// environment.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	server "rune-and-ruin/server"
	servernet "rune-and-ruin/server/internal/net"
	"rune-and-ruin/server/internal/observability"
	"rune-and-ruin/server/internal/sim"
	"rune-and-ruin/server/internal/telemetry"
	"rune-and-ruin/server/internal/world"
	"rune-and-ruin/server/logging"
	loggingsinks "rune-and-ruin/server/logging/sinks"
	"rune-and-ruin/server/spellbook"
)

type Config struct {
	Addr          string
	Logger        telemetry.Logger
	Observability observability.Config
}

// Run assembles the host and serves until the listener fails. The
// environment overrides the board (BOARD_WIDTH, BOARD_HEIGHT,
// BOARD_SEED), the cadence (TICK_RATE), the book (SPELLBOOK_DIR), the
// JSON event log (LOG_JSON_PATH), and profiling (ENABLE_PPROF_TRACE).
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	logConfig := logging.DefaultConfig()
	sinks := []logging.NamedSink{}
	if logConfig.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{Name: "console", Sink: loggingsinks.NewConsole(os.Stdout)})
	}
	if path := os.Getenv("LOG_JSON_PATH"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open event log %q: %w", path, err)
		}
		defer file.Close()
		sinks = append(sinks, logging.NamedSink{
			Name: "json",
			Sink: loggingsinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(logConfig, logging.SystemClock{}, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	worldCfg := world.DefaultConfig()
	if seed := os.Getenv("BOARD_SEED"); seed != "" {
		worldCfg.Seed = seed
	}
	worldCfg.Width = envInt(telemetryLogger, "BOARD_WIDTH", worldCfg.Width)
	worldCfg.Height = envInt(telemetryLogger, "BOARD_HEIGHT", worldCfg.Height)

	simCfg := sim.Config{}
	simCfg.TickRate = envInt(telemetryLogger, "TICK_RATE", simCfg.TickRate)

	book := spellbook.Default()
	if dir := os.Getenv("SPELLBOOK_DIR"); dir != "" {
		loaded, err := spellbook.Load(dir)
		if err != nil {
			return fmt.Errorf("failed to load spellbook from %q: %w", dir, err)
		}
		book = book.Merge(loaded)
		telemetryLogger.Printf("spellbook: %d definitions after merging %q", len(book), dir)
	}

	observabilityCfg := cfg.Observability
	if raw := os.Getenv("ENABLE_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			observabilityCfg.EnablePprofTrace = value
		} else {
			telemetryLogger.Printf("invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
	}

	counters := telemetry.NewCounters()
	hub, err := server.NewHub(server.HubConfig{
		World:     worldCfg,
		Sim:       simCfg,
		Book:      book,
		Publisher: router,
		Metrics:   counters,
	})
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}

	stop := make(chan struct{})
	go hub.Run(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir:     os.Getenv("CLIENT_DIR"),
		Logger:        fallbackLogger,
		Observability: observabilityCfg,
	})

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func envInt(logger telemetry.Logger, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Printf("invalid %s=%q: %v", key, raw, err)
		return fallback
	}
	return value
}
