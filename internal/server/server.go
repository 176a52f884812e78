// Package server exposes the range store over HTTP and streams changes
// to websocket clients.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/lox/rangebook/internal/library"
	"github.com/lox/rangebook/internal/rangestore"
)

// Server is the HTTP API.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	repo     *rangestore.Repository
	library  *library.Library
	hub      *Hub
	upgrader websocket.Upgrader
	clock    quartz.Clock
	logger   *log.Logger
}

// New creates a server for repo and lib. The hub should be registered as
// the repository's listener so saves and deletes reach websocket clients.
func New(addr string, repo *rangestore.Repository, lib *library.Library, hub *Hub, logger *log.Logger, clock quartz.Clock) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		repo:    repo,
		library: lib,
		hub:     hub,
		upgrader: websocket.Upgrader{
			// The API is meant for local tools and browsers on any origin.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clock:  clock,
		logger: logger.WithPrefix("server"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ws", s.handleWebSocket)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/sequences", func(r chi.Router) {
			r.Get("/", s.handleSequences)
			r.Get("/{sequence}/options", s.handleOptions)
			r.Post("/{sequence}/resolve", s.handleResolve)
		})

		r.Route("/ranges", func(r chi.Router) {
			r.Get("/", s.handleListRanges)
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
			r.Post("/reconcile", s.handleReconcile)
			r.Get("/{sequence}", s.handleLoadRange)
			r.Put("/{sequence}", s.handleSaveRange)
			r.Delete("/{sequence}", s.handleDeleteRange)
			r.Get("/{sequence}/stats", s.handleStats)
			r.Get("/{sequence}/combos", s.handleCombos)
		})

		r.Route("/library", func(r chi.Router) {
			r.Get("/", s.handleLibrary)
			r.Post("/folders", s.handleAddFolder)
			r.Delete("/folders/{id}", s.handleDeleteFolder)
			r.Post("/folders/{id}/toggle", s.handleToggleFolder)
			r.Post("/folders/{id}/ranges", s.handleAddLibraryRange)
			r.Get("/ranges/{id}", s.handleLibraryRange)
			r.Patch("/ranges/{id}", s.handleUpdateLibraryRange)
			r.Delete("/ranges/{id}", s.handleDeleteLibraryRange)
			r.Get("/ranges/{id}/export", s.handleExportLibraryRange)
		})
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. The hub is started alongside.
func (s *Server) Start() error {
	go s.hub.Run()
	s.logger.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	s.hub.Stop()
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", s.clock.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	s.hub.attach(newConnection(conn, s.logger, s.clock))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !s.repo.Ready() {
		status, code = "initializing", http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]any{"status": status, "clients": s.hub.Count()})
}
