package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
)

// Message types pushed to clients.
const (
	TypeDatasetCurrent  = "dataset.current"
	TypeDatasetReloaded = "dataset.reloaded"
)

// Message is the envelope for every pushed event
type Message struct {
	Type      string          `json:"type"`
	Dataset   dataset.Summary `json:"dataset"`
	Timestamp time.Time       `json:"timestamp"`
}

// Server represents the WebSocket server
type Server struct {
	port     string
	server   *http.Server
	hub      *Hub
	summary  func() dataset.Summary
	upgrader websocket.Upgrader
	log      *logrus.Entry

	startHub sync.Once
}

// NewServer creates a new WebSocket server. summary supplies the snapshot
// description sent to each client on connect. An empty origin list allows
// every origin.
func NewServer(summary func() dataset.Summary, origins []string, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return &Server{
		hub:     NewHub(),
		summary: summary,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

// Handler returns the websocket routes and starts the hub
func (s *Server) Handler() http.Handler {
	s.startHub.Do(func() { go s.hub.Run() })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/dataset", s.handleDataset)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Start starts the WebSocket server
func (s *Server) Start(port string) error {
	s.port = port
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: s.Handler(),
	}

	s.log.WithField("port", port).Info("WebSocket server listening")
	return s.server.ListenAndServe()
}

// handleDataset streams dataset reload notifications
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	if s.summary != nil {
		if data, err := encode(TypeDatasetCurrent, s.summary()); err == nil {
			client.send <- data
		}
	}

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// BroadcastDatasetReloaded tells every client that a new snapshot is served
func (s *Server) BroadcastDatasetReloaded(summary dataset.Summary) {
	data, err := encode(TypeDatasetReloaded, summary)
	if err != nil {
		s.log.WithError(err).Warn("Failed to encode reload event")
		return
	}
	s.hub.Broadcast(data)
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func encode(kind string, summary dataset.Summary) ([]byte, error) {
	return json.Marshal(Message{Type: kind, Dataset: summary, Timestamp: time.Now().UTC()})
}
