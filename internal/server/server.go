// Package server is the dialogue generation backend: a gin HTTP service that
// normalizes the requested topic, answers from the SQLite cache when it can and
// otherwise asks the generator.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nihilistkernel/internal/api"
	"nihilistkernel/internal/generator"
	"nihilistkernel/internal/logging"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

// HealthPath answers liveness probes.
const HealthPath = "/healthz"

// Error bodies returned to clients.
const (
	MsgNoInput        = "No input provided"
	MsgInvalidBody    = "Invalid request body"
	MsgGenerateFailed = "Failed to generate dialogue"
)

const shutdownTimeout = 15 * time.Second

// Cache stores dialogues by normalized input. store.DialogueCache implements it.
type Cache interface {
	Get(ctx context.Context, input string) (string, bool, error)
	Put(ctx context.Context, input, dialogue string) error
}

// Config wires a Server.
type Config struct {
	Addr          string
	AllowedOrigin string
	// Mode is the gin mode: debug, release or test.
	Mode      string
	Generator generator.Generator
	Cache     Cache
}

// Server serves POST /api/generate.
type Server struct {
	gin       *gin.Engine
	addr      string
	origin    string
	generator generator.Generator
	cache     Cache
	flights   singleflight.Group
}

// New builds the server and maps its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Generator == nil {
		return nil, errors.New("server: generator is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("server: cache is required")
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	srv := &Server{
		gin:       gin.New(),
		addr:      cfg.Addr,
		origin:    cfg.AllowedOrigin,
		generator: cfg.Generator,
		cache:     cfg.Cache,
	}
	srv.mapHandlers()
	return srv, nil
}

func (srv *Server) mapHandlers() {
	srv.gin.Use(RequestID(), Recovery(), AccessLog())
	srv.gin.GET(HealthPath, srv.healthCheck)

	apiGroup := srv.gin.Group("/api", CORS(srv.origin))
	apiGroup.POST("/generate", srv.generate)
	apiGroup.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	logging.Server("CORS origin for /api: %s", srv.origin)
}

// Handler exposes the router, mainly for tests.
func (srv *Server) Handler() http.Handler {
	return srv.gin
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              srv.addr,
		Handler:           srv.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Server("Started server on %s", srv.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logging.Server("Shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.ServerError("Server shutdown error: %v", err)
		return err
	}
	logging.Server("API server stopped.")
	return nil
}

func (srv *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// errorJSON aborts with the shared error body.
func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
}
