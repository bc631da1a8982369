package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/lifestream/pkg/build"
)

//go:generate moq -out mocks/snapshots.go -pkg mocks -skip-ensure -fmt goimports . Snapshots

// Server represents HTTP server instance serving the latest build
type Server struct {
	snapshots Snapshots
	listen    string
	timeout   time.Duration
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Snapshots provides build reports and triggers rebuilds
type Snapshots interface {
	Latest() *build.Report
	LastError() error
	RebuildNow(ctx context.Context) error
}

// Config holds server settings
type Config struct {
	Listen  string
	Timeout time.Duration
	Version string
	Debug   bool
}

// New initializes a new server instance
func New(cfg Config, snapshots Snapshots) *Server {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	s := &Server{
		snapshots: snapshots,
		listen:    cfg.Listen,
		timeout:   cfg.Timeout,
		version:   cfg.Version,
		debug:     cfg.Debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	log.Printf("[INFO] starting server on %s", s.listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              s.listen,
		Handler:           s.router,
		ReadHeaderTimeout: s.timeout,
		ReadTimeout:       s.timeout,
		WriteTimeout:      s.timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("lifestream", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// keep stdlib 405 responses for known paths with a wrong method
	s.router.DisableNotFoundHandler()
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /timeline", s.timelineHandler)
		r.HandleFunc("POST /rebuild", s.rebuildHandler)
	})

	s.router.HandleFunc("GET /feeds/{name...}", s.feedHandler)
	s.router.HandleFunc("GET /{$}", s.pageHandler)
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
