// Package server exposes the cabinet over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/coordinator"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Processor is the request entry point the transport layer needs.
// Implemented by the coordinator.
type Processor interface {
	ProcessRequest(ctx context.Context, sessionID, input string) (*coordinator.Response, error)
	MinisterDirect(ctx context.Context, minister asl.Minister, sessionID, input string) (map[string]any, error)
	Health() []coordinator.BridgeHealth
	Initialized() bool
	ActiveSessions() int
}

// Server is the HTTP/WebSocket front of the cabinet.
type Server struct {
	cfg        Config
	processor  Processor
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
	startedAt  time.Time
}

func New(cfg Config, processor Processor) *Server {
	s := &Server{
		cfg:       cfg,
		processor: processor,
		hub:       NewHub(),
		startedAt: time.Now(),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.registerRoutes(r)
	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the WebSocket hub, for use as the coordinator's
// broadcaster.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("aethero server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes all WebSocket
// connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.CloseAll()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
