/*
live.go - Websocket stream of change notifications

PURPOSE:
  Mirrors the in-process change bus to connected dashboards. A client
  receives one JSON frame per event (topic, timestamp, metadata) and
  decides which of its month views to reload. The server never pushes
  payloads, only invalidation hints, so a slow client can miss frames
  without corrupting anything: the authoritative data is a GET away.

LIFECYCLE:
  One bus subscription per connection, torn down when the client
  disconnects. Reads from the client are drained and discarded; the
  stream is one-way.
*/
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bpma/roster-engine/events"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// LiveEventDTO is one change-notification frame.
type LiveEventDTO struct {
	Topic     string            `json:"topic"`
	Timestamp string            `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// LiveFeed upgrades HTTP connections and relays bus events to them.
type LiveFeed struct {
	bus      *events.Broker
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewLiveFeed wires the feed to the bus.
func NewLiveFeed(bus *events.Broker, log zerolog.Logger) *LiveFeed {
	return &LiveFeed{
		bus: bus,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboards are served from other origins in dev.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /api/live.
func (f *LiveFeed) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := f.bus.Subscribe()
	done := make(chan struct{})

	go f.drainReads(conn, done)
	go f.writeLoop(conn, sub, done)
}

// drainReads discards client frames and detects disconnect.
func (f *LiveFeed) drainReads(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *LiveFeed) writeLoop(conn *websocket.Conn, sub events.Subscriber, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		f.bus.Unsubscribe(sub)
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			frame := LiveEventDTO{
				Topic:     string(ev.Topic),
				Timestamp: ev.Timestamp.Format(time.RFC3339),
				Metadata:  ev.Metadata,
			}
			if err := conn.WriteJSON(frame); err != nil {
				f.log.Debug().Err(err).Msg("live client write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
