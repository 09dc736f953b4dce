// Package monitor serves the HTTP debug surface: pipeline status,
// Prometheus scrape endpoint and a websocket stream of bus events.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/open-beagle/gstkit/internal/config"
	"github.com/open-beagle/gstkit/internal/metrics"
)

// Status is the control-surface snapshot served by /api/status. Unknown
// position and duration stay null in the payload, mirroring the absent
// values of the queries.
type Status struct {
	Pipeline     string   `json:"pipeline"`
	State        string   `json:"state"`
	PendingState string   `json:"pending_state,omitempty"`
	PositionNs   *int64   `json:"position_ns"`
	DurationNs   *int64   `json:"duration_ns"`
	Elements     []string `json:"elements"`
	Timestamp    int64    `json:"timestamp"`
}

// StatusSource provides the current snapshot.
type StatusSource interface {
	Status() Status
}

// BusEvent is one bus message forwarded to websocket clients.
type BusEvent struct {
	Type      string `json:"type"`
	Source    string `json:"source"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Server is the debug HTTP server.
type Server struct {
	config *config.MonitorConfig
	logger *logrus.Entry

	source    StatusSource
	collector *metrics.Collector

	router   *mux.Router
	server   *http.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	running bool
}

// NewServer creates the server; it does not listen until Start.
func NewServer(cfg *config.MonitorConfig, source StatusSource, collector *metrics.Collector) *Server {
	s := &Server{
		config:    cfg,
		logger:    logrus.WithField("component", "monitor"),
		source:    source,
		collector: collector,
		router:    mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	if s.collector != nil {
		s.router.Handle("/metrics", s.collector.Handler()).Methods(http.MethodGet)
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.running = true

	go func() {
		s.logger.Infof("Monitor listening on %s", s.config.Addr())
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("Monitor server failed: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down and closes all websocket clients.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]struct{})
	server := s.server
	s.mu.Unlock()

	return server.Shutdown(ctx)
}

// Publish forwards a bus event to all connected websocket clients.
// Clients that cannot keep up are dropped.
func (s *Server) Publish(event BusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Debugf("Dropping websocket client: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		http.Error(w, "status source not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, s.source.Status())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()

	s.logger.Debugf("Websocket client connected (%d total)", count)

	// Reader loop only notices disconnects; the stream is one-way.
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

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnf("Failed to encode response: %v", err)
	}
}
