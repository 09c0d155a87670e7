// Package dashboard serves a read-only admin websocket feed of registry
// lifecycle events: connections opening and closing, register/reconnect
// outcomes, completed uploads, and CRC-confirmation results. It has no
// bearing on the wire protocol; it exists purely for operators watching
// the server live.
package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/duskbyte/filedrop/observability"
	"github.com/duskbyte/filedrop/realtime/ws"
)

// Event is one lifecycle notification broadcast to every connected
// dashboard client.
type Event struct {
	Kind string `json:"kind"`
	OK   bool   `json:"ok,omitempty"`
}

const (
	KindConnOpened  = "conn_opened"
	KindConnClosed  = "conn_closed"
	KindRegistered  = "registered"
	KindReconnected = "reconnected"
	KindUploaded    = "uploaded"
	KindCRCResult   = "crc_result"
)

// Hub fans lifecycle events out to every connected admin client. It
// implements observability.Observer directly, so it can be handed to
// server.Config.Observer alongside (or instead of) a Prometheus exporter.
type Hub struct {
	mu      sync.Mutex
	clients map[*ws.Conn]chan []byte

	AllowedOrigins []string
	AllowNoOrigin  bool
}

// NewHub creates an empty broadcast hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*ws.Conn]chan []byte)}
}

// ServeHTTP upgrades the request to a websocket and streams events to it
// until a write fails. The handler never reads from the client, so a
// disconnect is noticed only when the next event write fails.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Upgrade(w, r, ws.UpgraderOptions{
		CheckOrigin: ws.NewOriginChecker(h.AllowedOrigins, h.AllowNoOrigin),
	})
	if err != nil {
		return
	}
	defer conn.Close()

	out := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for msg := range out {
		if err := conn.Underlying().WriteMessage(1, msg); err != nil {
			return
		}
	}
}

func (h *Hub) broadcast(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, out := range h.clients {
		select {
		case out <- b:
		default:
			// A slow client drops events rather than blocking the server.
		}
	}
}

func (h *Hub) ConnOpened()      { h.broadcast(Event{Kind: KindConnOpened}) }
func (h *Hub) ConnClosed()      { h.broadcast(Event{Kind: KindConnClosed}) }
func (h *Hub) Registered(ok bool)  { h.broadcast(Event{Kind: KindRegistered, OK: ok}) }
func (h *Hub) Reconnected(ok bool) { h.broadcast(Event{Kind: KindReconnected, OK: ok}) }
func (h *Hub) Uploaded()          { h.broadcast(Event{Kind: KindUploaded, OK: true}) }
func (h *Hub) CRCResult(outcome observability.CRCOutcome) {
	h.broadcast(Event{Kind: KindCRCResult, OK: outcome == observability.CRCOutcomeConfirmed})
}

var _ observability.Observer = (*Hub)(nil)
