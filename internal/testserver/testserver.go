// Package testserver is a stand-in for the game server mod: it accepts
// WebSocket clients, records every text frame they send, and pushes whatever a
// test asks it to.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type Server struct {
	URL string

	server   *httptest.Server
	upgrader websocket.Upgrader
	accepted atomic.Int32

	// Optional auto-responder, called for every received text frame.
	OnMessage func(s *Server, text string)

	mut_state sync.Mutex
	received  []string
	conns     []*websocket.Conn
	notify    chan struct{}
}

func Start(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		notify: make(chan struct{}, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handle)
	s.server = httptest.NewServer(mux)
	s.URL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"

	t.Cleanup(s.Close)
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.accepted.Add(1)

	s.mut_state.Lock()
	s.conns = append(s.conns, c)
	s.mut_state.Unlock()

	for {
		msgType, payload, err := c.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		text := string(payload)
		s.mut_state.Lock()
		s.received = append(s.received, text)
		s.mut_state.Unlock()

		select {
		case s.notify <- struct{}{}:
		default:
		}

		if s.OnMessage != nil {
			s.OnMessage(s, text)
		}
	}
}

// Accepted counts upgraded WebSocket connections over the server's lifetime.
func (s *Server) Accepted() int {
	return int(s.accepted.Load())
}

func (s *Server) Received() []string {
	s.mut_state.Lock()
	defer s.mut_state.Unlock()
	out := make([]string, len(s.received))
	copy(out, s.received)
	return out
}

// WaitForMessages blocks until at least n frames arrived, failing the test after timeout.
func (s *Server) WaitForMessages(t testing.TB, n int, timeout time.Duration) []string {
	t.Helper()
	deadline := time.After(timeout)
	for {
		if got := s.Received(); len(got) >= n {
			return got
		}
		select {
		case <-s.notify:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %d messages, got %v", n, s.Received())
		}
	}
}

// Push sends text to every connected client.
func (s *Server) Push(t testing.TB, text string) {
	t.Helper()
	s.mut_state.Lock()
	defer s.mut_state.Unlock()
	if len(s.conns) == 0 {
		t.Fatalf("no client connected to push %q to", text)
	}
	for _, c := range s.conns {
		if err := c.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
}

// Reply is for use inside OnMessage, where a testing.TB is not at hand.
func (s *Server) Reply(text string) {
	s.mut_state.Lock()
	defer s.mut_state.Unlock()
	for _, c := range s.conns {
		_ = c.WriteMessage(websocket.TextMessage, []byte(text))
	}
}

// DropClients closes every client socket from the server side.
func (s *Server) DropClients() {
	s.mut_state.Lock()
	defer s.mut_state.Unlock()
	for _, c := range s.conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
	}
	s.conns = nil
}

func (s *Server) Close() {
	s.DropClients()
	s.server.Close()
}
