// Package ws runs the websocket side of the host: it upgrades observer
// connections, registers them with the hub, and pumps their commands into
// the simulation queue. Outbound tick frames travel through the hub's
// broadcast, so the read pump only answers the client's own traffic.
package ws

import (
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"rune-and-ruin/server"
	"rune-and-ruin/server/internal/net/intake"
	"rune-and-ruin/server/internal/net/proto"
	"rune-and-ruin/server/internal/sim"
)

// HandlerConfig tunes the websocket endpoint.
type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades connections and runs their sessions against the hub.
type Handler struct {
	hub      *server.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket handler for the given hub.
func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) stageContext() intake.CommandContext {
	return intake.CommandContext{
		Enqueue:    h.hub.Enqueue,
		KnownSpell: h.hub.KnownSpell,
		Tick:       h.hub.Tick,
		Now:        time.Now,
	}
}

// Handle upgrades the request and runs the session's read pump until the
// client goes away.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	sub, err := h.hub.Subscribe(conn, r.RemoteAddr)
	if err != nil {
		h.logger.Printf("welcome failed for %s: %v", r.RemoteAddr, err)
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Detach(sub)
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from client %d: %v", sub.ID(), err)
			continue
		}

		normalizedSeq := uint64(0)
		if msg.Seq != nil && *msg.Seq > 0 {
			normalizedSeq = *msg.Seq
		}

		writeFrame := func(data []byte, err error) bool {
			if err != nil {
				h.logger.Printf("failed to marshal response for client %d: %v", sub.ID(), err)
				return true
			}
			if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
				h.hub.Detach(sub)
				return false
			}
			return true
		}

		sendCommandAck := func(cmd sim.Command) bool {
			if normalizedSeq == 0 {
				return true
			}
			if !writeFrame(proto.EncodeCommandAck(proto.CommandAck{Seq: normalizedSeq, Tick: cmd.OriginTick})) {
				return false
			}
			sub.StoreLastCommandSeq(normalizedSeq)
			return true
		}

		sendCommandReject := func(reason string, retry bool) bool {
			if normalizedSeq == 0 {
				return true
			}
			return writeFrame(proto.EncodeCommandReject(proto.CommandReject{Seq: normalizedSeq, Reason: reason, Retry: retry}))
		}

		if msg.Type == proto.TypeHeartbeat {
			now := time.Now()
			rtt := now.UnixMilli() - msg.SentAt
			if msg.SentAt == 0 || rtt < 0 {
				rtt = 0
			}
			if !writeFrame(proto.EncodeHeartbeat(proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt,
			})) {
				return
			}
			continue
		}

		// A replayed sequence means the ack got lost, not the command.
		if normalizedSeq > 0 {
			if last := sub.LastCommandSeq(); last > 0 && normalizedSeq <= last {
				if !writeFrame(proto.EncodeCommandAck(proto.CommandAck{Seq: normalizedSeq})) {
					return
				}
				continue
			}
		}

		cmd, ok, reason := intake.StageClientCommand(h.stageContext(), msg)
		if ok {
			if !sendCommandAck(cmd) {
				return
			}
			continue
		}

		retry := reason == sim.CommandRejectQueueLimit || reason == sim.CommandRejectQueueFull
		if !sendCommandReject(reason, retry) {
			return
		}
		if reason == intake.CommandRejectInvalid {
			h.logger.Printf("unmappable message type %q from client %d", msg.Type, sub.ID())
		}
	}
}
