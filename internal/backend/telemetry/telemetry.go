// Package telemetry streams frame-ready notifications over a
// websocket for external observability. It is deliberately one-way:
// connected clients receive a JSON event per completed frame but
// cannot send commands back, since this is an observability feed, not
// an interactive debug console.
package telemetry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mrosa/dmgcore/internal/emulator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// frameEvent is published once per completed frame.
type frameEvent struct {
	Frame        uint64 `json:"frame"`
	Instructions uint64 `json:"instructions"`
	ROMTitle     string `json:"rom_title"`
}

// Server broadcasts frameEvent messages to every websocket client
// connected at Addr, wrapping a driving Backend so telemetry can be
// layered over any presenter.
type Server struct {
	Addr    string
	Wrapped interface {
		Run(e *emulator.Emulator) error
	}

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func (s *Server) Run(e *emulator.Emulator) error {
	s.clients = make(map[*websocket.Conn]struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/telemetry", s.handleConn)
	server := &http.Server{Addr: s.Addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("telemetry: server stopped", "error", err)
		}
	}()
	defer server.Close()

	lastFrame := e.FrameCount()
	done := make(chan error, 1)
	go func() { done <- s.Wrapped.Run(e) }()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			return err
		case <-ticker.C:
			if current := e.FrameCount(); current != lastFrame {
				lastFrame = current
				s.publish(frameEvent{
					Frame:        current,
					Instructions: e.InstructionCount(),
					ROMTitle:     e.Cartridge().Header.Title,
				})
			}
		}
	}
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("telemetry: upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Drain and discard any client messages; this feed never accepts
	// commands, but the read pump must run to notice disconnects.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) publish(event frameEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
