// Package status_effects defines the events the status engine publishes
// as instances are applied, refreshed, and expire.
package status_effects

import (
	"context"

	"rune-and-ruin/server/logging"
)

const (
	// EventApplied is emitted when a status effect lands on an entity for
	// the first time.
	EventApplied logging.EventType = "status_effects.applied"
	// EventRefreshed is emitted when re-application changes an existing
	// instance's potency or stacks.
	EventRefreshed logging.EventType = "status_effects.refreshed"
	// EventExpired is emitted when an instance runs out of stacks.
	EventExpired logging.EventType = "status_effects.expired"
	// EventUnknown is emitted when a command names a status the engine has
	// no definition for. The command is dropped.
	EventUnknown logging.EventType = "status_effects.unknown"
)

// InstancePayload captures the state of a status instance after the event.
type InstancePayload struct {
	Status  string `json:"status"`
	Potency int    `json:"potency,omitempty"`
	Stacks  int    `json:"stacks,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Applied publishes a first-application event.
func Applied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload InstancePayload) {
	publish(ctx, pub, EventApplied, tick, actor, target, logging.SeverityInfo, payload)
}

// Refreshed publishes a re-application event.
func Refreshed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload InstancePayload) {
	publish(ctx, pub, EventRefreshed, tick, actor, target, logging.SeverityDebug, payload)
}

// Expired publishes an expiry event.
func Expired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload InstancePayload) {
	publish(ctx, pub, EventExpired, tick, actor, target, logging.SeverityDebug, payload)
}

// Unknown publishes a warning about an unrecognised status kind.
func Unknown(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload InstancePayload) {
	publish(ctx, pub, EventUnknown, tick, actor, target, logging.SeverityWarn, payload)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, tick uint64, actor logging.EntityRef, target logging.EntityRef, severity logging.Severity, payload InstancePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: severity,
		Category: logging.CategoryStatus,
		Payload:  payload,
	})
}
