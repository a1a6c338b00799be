// Package net assembles the host's HTTP surface: health and diagnostics
// probes, the spellbook and journal read endpoints, the websocket mount,
// and the optional pprof handlers.
package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"rune-and-ruin/server"
	"rune-and-ruin/server/internal/net/ws"
	"rune-and-ruin/server/internal/observability"
	"rune-and-ruin/server/spell"
	"rune-and-ruin/server/spellbook"
)

// HTTPHandlerConfig wires the HTTP surface around the hub.
type HTTPHandlerConfig struct {
	ClientDir     string
	Logger        *log.Logger
	Observability observability.Config
}

// NewHTTPHandler builds the route table for the game host.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		entries, oldest, newest := hub.JournalWindow()
		payload := struct {
			Status      string `json:"status"`
			ServerTime  int64  `json:"serverTime"`
			Tick        uint64 `json:"tick"`
			Subscribers int    `json:"subscribers"`
			Pending     int    `json:"pendingCommands"`
			Journal     struct {
				Entries    int    `json:"entries"`
				OldestTick uint64 `json:"oldestTick"`
				NewestTick uint64 `json:"newestTick"`
			} `json:"journal"`
			Telemetry map[string]uint64 `json:"telemetry"`
		}{
			Status:      "ok",
			ServerTime:  time.Now().UnixMilli(),
			Tick:        hub.Tick(),
			Subscribers: hub.Subscribers(),
			Pending:     hub.Pending(),
			Telemetry:   hub.TelemetrySnapshot(),
		}
		payload.Journal.Entries = entries
		payload.Journal.OldestTick = oldest
		payload.Journal.NewestTick = newest

		writeJSON(w, payload)
	})

	mux.HandleFunc("/spellbook", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		payload := struct {
			Spellbook []spellbook.Definition `json:"spellbook"`
		}{Spellbook: hub.Spellbook()}

		writeJSON(w, payload)
	})

	mux.HandleFunc("/journal", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if raw := r.URL.Query().Get("tick"); raw != "" {
			tick, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				httpError(w, "invalid tick", nethttp.StatusBadRequest)
				return
			}
			note, ok := hub.NoteByTick(tick)
			if !ok {
				httpError(w, "tick not retained", nethttp.StatusNotFound)
				return
			}
			writeJSON(w, struct {
				Note spell.Note `json:"note"`
			}{Note: note})
			return
		}

		notes := hub.RecentNotes()
		if notes == nil {
			notes = []spell.Note{}
		}
		writeJSON(w, struct {
			Notes []spell.Note `json:"notes"`
		}{Notes: notes})
	})

	mux.HandleFunc("/state", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		data, ok := hub.MarshalState()
		if !ok {
			httpError(w, "no tick broadcast yet", nethttp.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
