package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"thermohub/internal/models"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// Live feed message types.
const (
	typeState            = "state"
	typeSensorUpdate     = "sensor_update"
	typeControllerStatus = "controller_status"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// envelopeFor maps a domain event to its wire envelope. The event union has
// exactly two variants; anything else is a programming error surfaced in the
// payload rather than a dropped frame.
func envelopeFor(ev models.DomainEvent) wsEnvelope {
	switch e := ev.(type) {
	case models.SensorUpdate:
		return wsEnvelope{Type: typeSensorUpdate, Data: gin.H{
			"timestamp":   e.Reading.Timestamp,
			"temperature": e.Reading.TemperatureC,
			"action":      e.Action,
			"stale":       e.Stale,
		}}
	case models.ControllerStatusUpdate:
		return wsEnvelope{Type: typeControllerStatus, Data: gin.H{
			"timestamp":         e.Status.Timestamp,
			"location":          e.Status.Location,
			"current_setpoint":  e.Status.SetpointC,
			"last_outside_temp": e.Status.OutsideTempC,
		}}
	default:
		return wsEnvelope{Error: fmt.Sprintf("unhandled event %T", ev)}
	}
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// wsConnect registers the client on the live fan-out and streams domain
// events to it as they are published. A failed write, a closed peer, or a
// canceled request all end with the subscriber released; nothing here ever
// back-pressures the merger.
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	sub := h.services.Broadcast.Subscribe()
	defer h.services.Broadcast.Unsubscribe(sub.ID)

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	// Send the current state immediately; the live feed only carries
	// forward updates (no replay).
	if err := h.writeEnvelope(conn, wsEnvelope{Type: typeState, Data: h.services.Monitoring.Snapshot()}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := h.writeEnvelope(conn, envelopeFor(ev)); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: writeEnvelope writes one envelope with a write deadline.
func (h *Handler) writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
