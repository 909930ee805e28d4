// internal/api/stream.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/core"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Frames queued per client before updates are dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream is read-only public data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamFrame is the envelope pushed to WebSocket clients.
type streamFrame struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// handleStream upgrades the connection and relays quote and prediction
// broadcasts until the client disconnects. A slow client skips frames
// rather than blocking the hub.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	if s.metrics != nil {
		s.metrics.StreamClientInc()
		defer s.metrics.StreamClientDec()
	}

	send := make(chan streamFrame, sendBuffer)
	enqueue := func(frame streamFrame) {
		select {
		case send <- frame:
		default:
		}
	}

	unsubQuotes := s.service.SubscribeQuotes(func(quotes []core.QuoteSnapshot) {
		enqueue(streamFrame{Type: "quotes", Data: quotes, Timestamp: time.Now().UTC()})
	})
	defer unsubQuotes()
	unsubPredictions := s.service.SubscribePredictions(func(preds []core.PredictionResult) {
		enqueue(streamFrame{Type: "predictions", Data: preds, Timestamp: time.Now().UTC()})
	})
	defer unsubPredictions()

	// Prime the client with the current picture.
	enqueue(streamFrame{
		Type:      "quotes",
		Data:      s.service.GetAllInstrumentData(r.Context()),
		Timestamp: time.Now().UTC(),
	})

	done := make(chan struct{})
	go s.readLoop(conn, done)
	s.writeLoop(conn, send, done)
}

// readLoop discards inbound frames; it exists to process control
// messages and detect disconnects.
func (s *Server) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, send <-chan streamFrame, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case frame := <-send:
			payload, err := json.Marshal(frame)
			if err != nil {
				s.logger.Warn("stream frame marshal failed", zap.Error(err))
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
