package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewRouter wires the API routes.
func NewRouter(handler *Handler, corsOrigins []string) http.Handler {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Players
	api.HandleFunc("/players", handler.ListPlayers).Methods("GET")
	api.HandleFunc("/players/filters", handler.GetFilters).Methods("GET")
	api.HandleFunc("/players/{name}", handler.GetPlayer).Methods("GET")
	api.HandleFunc("/players/{name}/similar", handler.GetSimilarPlayers).Methods("GET")
	api.HandleFunc("/compare", handler.ComparePlayers).Methods("GET")

	// Dataset
	api.HandleFunc("/dataset", handler.GetDataset).Methods("GET")
	api.HandleFunc("/dataset/reload", handler.ReloadDataset).Methods("POST")

	// CORS wraps the router so preflight requests reach it before method matching.
	return CORSMiddleware(corsOrigins)(router)
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, corsOrigins []string) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: NewRouter(handler, corsOrigins),
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
