// Package network defines the subscriber lifecycle events the hub
// publishes as observers attach and detach.
package network

import (
	"context"

	"rune-and-ruin/server/logging"
)

const (
	// EventClientConnected is emitted when a websocket subscriber joins.
	EventClientConnected logging.EventType = "network.client_connected"
	// EventClientDisconnected is emitted when a subscriber leaves cleanly.
	EventClientDisconnected logging.EventType = "network.client_disconnected"
	// EventClientDropped is emitted when the hub evicts a subscriber after
	// a failed write.
	EventClientDropped logging.EventType = "network.client_dropped"
)

// ClientPayload identifies a subscriber connection.
type ClientPayload struct {
	Client      uint64 `json:"client"`
	RemoteAddr  string `json:"remoteAddr,omitempty"`
	Subscribers int    `json:"subscribers"`
}

// DropPayload records why the hub evicted a subscriber.
type DropPayload struct {
	Client      uint64 `json:"client"`
	Reason      string `json:"reason"`
	Subscribers int    `json:"subscribers"`
}

// ClientConnected publishes a subscriber attach event.
func ClientConnected(ctx context.Context, pub logging.Publisher, tick uint64, payload ClientPayload) {
	publish(ctx, pub, EventClientConnected, tick, logging.SeverityInfo, payload)
}

// ClientDisconnected publishes a clean detach event.
func ClientDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, payload ClientPayload) {
	publish(ctx, pub, EventClientDisconnected, tick, logging.SeverityInfo, payload)
}

// ClientDropped publishes an eviction event after a failed write.
func ClientDropped(ctx context.Context, pub logging.Publisher, tick uint64, payload DropPayload) {
	publish(ctx, pub, EventClientDropped, tick, logging.SeverityWarn, payload)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, tick uint64, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Tick:     tick,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
