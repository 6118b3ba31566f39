// Package remote serves the debug inspector: an HTTP status page plus a
// websocket that streams session status snapshots to connected browsers.
package remote

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Server pushes status snapshots to websocket clients. One goroutine
// publishes; clients connect and disconnect concurrently.
type Server struct {
	addr string

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	last    []byte

	upgrader websocket.Upgrader
	ln       net.Listener
	httpSrv  *http.Server
}

// New creates an inspector server for addr.
func New(addr string) *Server {
	s := &Server{
		addr:    addr,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local inspector, any origin is fine
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.serveWS)
	s.httpSrv = &http.Server{Handler: mux}
	return s
}

// Start binds the listener and serves in the background. Bind failures
// surface here, not in the serving goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	s.ln = ln
	slog.Info("inspector listening", "addr", ln.Addr().String())

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Warn("inspector server stopped", "err", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Close stops the server and drops all clients.
func (s *Server) Close() {
	s.httpSrv.Close()

	s.mu.Lock()
	for c := range s.clients {
		c.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.mu.Unlock()
}

// writeWait bounds each client write so a stalled browser cannot hold up
// the render loop's status push.
const writeWait = time.Second

// Publish broadcasts a status snapshot to every connected client and
// keeps it for clients that connect later. Clients whose write fails or
// times out are dropped.
func (s *Server) Publish(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("inspector marshal failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = data
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			c.Close()
			delete(s.clients, c)
		}
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("inspector upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	// Send the latest snapshot before registering; writes to registered
	// conns happen only under mu, so the two writers never overlap.
	if last != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, last); err != nil {
			conn.Close()
			return
		}
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	slog.Debug("inspector client connected", "remote", conn.RemoteAddr().String())

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		slog.Debug("inspector client disconnected")
	}()

	// Read until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
