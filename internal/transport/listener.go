// Package transport consumes the server's real-time websocket feed and
// forwards decoded events to the router.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mosaicdim/recents/internal/model"
	"github.com/mosaicdim/recents/internal/router"
)

const (
	pongWait         = 60 * time.Second
	maxMessageSize   = 1 << 20
	reconnectMinWait = time.Second
	reconnectMaxWait = 30 * time.Second
)

// Listener maintains a websocket connection to the event endpoint and
// pumps frames into the router until its context is cancelled.
type Listener struct {
	url    string
	apiKey string
	router *router.Router
}

func NewListener(url, apiKey string, r *router.Router) *Listener {
	return &Listener{url: url, apiKey: apiKey, router: r}
}

// Run connects, reads until the connection drops, and reconnects with
// backoff. It returns when ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	wait := reconnectMinWait
	for {
		connected, err := l.readPump(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("event stream disconnected")
		}
		wait = nextWait(wait, connected)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// nextWait doubles the reconnect delay up to the cap, starting over once a
// session actually got past the dial.
func nextWait(wait time.Duration, connected bool) time.Duration {
	if connected {
		return reconnectMinWait
	}
	wait *= 2
	if wait > reconnectMaxWait {
		wait = reconnectMaxWait
	}
	return wait
}

// readPump reports whether the dial succeeded alongside the session error,
// so Run can tell a dead endpoint from a dropped connection.
func (l *Listener) readPump(ctx context.Context) (bool, error) {
	header := http.Header{}
	if l.apiKey != "" {
		header.Set("Authorization", "Bearer "+l.apiKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, header)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	// drop the connection if the context goes away mid-read
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	log.Info().Str("url", l.url).Msg("event stream connected")

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return true, err
		}

		var ev model.Event
		if err := json.Unmarshal(frame, &ev); err != nil {
			log.Warn().Err(err).Msg("dropping undecodable event frame")
			continue
		}
		l.router.Handle(ctx, &ev)
	}
}
