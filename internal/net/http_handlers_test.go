package net

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"rune-and-ruin/server"
	"rune-and-ruin/server/internal/observability"
	"rune-and-ruin/server/internal/sim"
	"rune-and-ruin/server/internal/world"
	"rune-and-ruin/server/spellbook"
)

func newHandlerServer(t *testing.T, cfg HTTPHandlerConfig) (*server.Hub, *httptest.Server) {
	t.Helper()

	hub, err := server.NewHub(server.HubConfig{World: world.Config{Width: 10, Height: 10, Seed: "http"}})
	if err != nil {
		t.Fatalf("NewHub failed: %v", err)
	}
	srv := httptest.NewServer(NewHTTPHandler(hub, cfg))
	t.Cleanup(srv.Close)
	return hub, srv
}

func getBody(t *testing.T, url string, wantStatus int) []byte {
	t.Helper()

	resp, err := nethttp.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s returned %d, want %d", url, resp.StatusCode, wantStatus)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	_, srv := newHandlerServer(t, HTTPHandlerConfig{})
	body := getBody(t, srv.URL+"/health", nethttp.StatusOK)
	if string(body) != "ok" {
		t.Fatalf("expected ok body, got %q", body)
	}
}

func TestSpellbookEndpointListsDefaults(t *testing.T) {
	_, srv := newHandlerServer(t, HTTPHandlerConfig{})
	body := getBody(t, srv.URL+"/spellbook", nethttp.StatusOK)

	var payload struct {
		Spellbook []spellbook.Definition `json:"spellbook"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode spellbook payload: %v", err)
	}
	if len(payload.Spellbook) == 0 {
		t.Fatalf("expected a non-empty spellbook")
	}
	found := false
	for _, def := range payload.Spellbook {
		if def.ID == "gale-step" {
			found = true
			if len(def.Instructions) == 0 {
				t.Fatalf("expected gale-step to publish its instructions")
			}
		}
	}
	if !found {
		t.Fatalf("expected gale-step in the served book")
	}
}

func TestDiagnosticsReportsQueueDepth(t *testing.T) {
	hub, srv := newHandlerServer(t, HTTPHandlerConfig{})
	if ok, reason := hub.Enqueue(sim.Command{Type: sim.CommandJoin}); !ok {
		t.Fatalf("enqueue rejected: %s", reason)
	}

	body := getBody(t, srv.URL+"/diagnostics", nethttp.StatusOK)
	var payload struct {
		Status  string `json:"status"`
		Tick    uint64 `json:"tick"`
		Pending int    `json:"pendingCommands"`
		Journal struct {
			Entries int `json:"entries"`
		} `json:"journal"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode diagnostics payload: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("expected ok status, got %q", payload.Status)
	}
	if payload.Tick != 0 {
		t.Fatalf("expected tick 0 before the loop runs, got %d", payload.Tick)
	}
	if payload.Pending != 1 {
		t.Fatalf("expected one pending command, got %d", payload.Pending)
	}
	if payload.Journal.Entries != 0 {
		t.Fatalf("expected an empty journal, got %d entries", payload.Journal.Entries)
	}
}

func TestJournalEndpointShapes(t *testing.T) {
	_, srv := newHandlerServer(t, HTTPHandlerConfig{})

	body := getBody(t, srv.URL+"/journal", nethttp.StatusOK)
	var payload struct {
		Notes []json.RawMessage `json:"notes"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode journal payload: %v", err)
	}
	if payload.Notes == nil {
		t.Fatalf("expected notes array even when empty")
	}

	getBody(t, srv.URL+"/journal?tick=999", nethttp.StatusNotFound)
	getBody(t, srv.URL+"/journal?tick=abc", nethttp.StatusBadRequest)
}

func TestStateUnavailableBeforeFirstBroadcast(t *testing.T) {
	_, srv := newHandlerServer(t, HTTPHandlerConfig{})
	getBody(t, srv.URL+"/state", nethttp.StatusServiceUnavailable)
}

func TestPprofMountRespectsToggle(t *testing.T) {
	_, disabled := newHandlerServer(t, HTTPHandlerConfig{})
	getBody(t, disabled.URL+"/debug/pprof/", nethttp.StatusNotFound)

	_, enabled := newHandlerServer(t, HTTPHandlerConfig{
		Observability: observability.Config{EnablePprofTrace: true},
	})
	getBody(t, enabled.URL+"/debug/pprof/", nethttp.StatusOK)
}
