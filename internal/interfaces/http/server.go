// Package http provides the HTTP adapter over the bill workflows.
// It is a thin translation layer: request decoding, session extraction,
// and mapping workflow results onto JSON responses.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billed-app/billed-api/internal/application/port"
	"github.com/billed-app/billed-api/internal/application/service"
	"github.com/billed-app/billed-api/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ReceiptsDir, when set, is served statically under /receipts so
	// locally stored receipt URLs resolve
	ReceiptsDir string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// draftEntry pairs an open submission workflow with the navigator that
// records where it wants the client to go next
type draftEntry struct {
	svc *service.SubmissionService
	nav *routeRecorder
}

// Server is the HTTP adapter. Submission workflows are stateful per draft;
// the server keeps them in an in-memory registry keyed by the upload key so
// a later submit lands on the same instance.
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	gateway    port.Gateway
	logger     Logger
	events     service.EventSink

	mu     sync.Mutex
	drafts map[string]*draftEntry
}

// Option configures the server
type Option func(*Server)

// WithEvents publishes bill lifecycle events through the sink
func WithEvents(sink service.EventSink) Option {
	return func(s *Server) {
		s.events = sink
	}
}

// NewServer creates a new HTTP server around the given gateway
func NewServer(config ServerConfig, gateway port.Gateway, logger Logger, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:  config,
		router:  gin.New(),
		gateway: gateway,
		logger:  logger,
		drafts:  make(map[string]*draftEntry),
	}

	for _, opt := range opts {
		opt(server)
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// sessionUser reads the authenticated user from trusted headers. Enforcing
// authentication is owned by the deployment front; the adapter only needs
// the identity to stamp bills and gate adjudication.
func sessionUser(c *gin.Context) entity.User {
	user := entity.User{
		Email: c.GetHeader("X-User-Email"),
		Type:  entity.UserType(c.GetHeader("X-User-Type")),
	}
	if user.Type == "" {
		user.Type = entity.UserTypeEmployee
	}
	return user
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	if s.config.ReceiptsDir != "" {
		s.router.Static("/receipts", s.config.ReceiptsDir)
	}

	api := s.router.Group("/api/v1")
	{
		api.POST("/bills/receipt", s.handleUploadReceipt)
		api.POST("/bills", s.handleSubmitBill)
		api.GET("/bills", s.handleListBills)
		api.GET("/bills/dashboard", s.handleDashboard)
		api.POST("/bills/:id/accept", s.handleAcceptBill)
		api.POST("/bills/:id/refuse", s.handleRefuseBill)
	}
}

// Router exposes the configured handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// routeRecorder captures the navigation a workflow requests so the handler
// can hand it back to the client as a redirect hint
type routeRecorder struct {
	mu   sync.Mutex
	last port.Route
}

func (r *routeRecorder) Navigate(route port.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = route
}

func (r *routeRecorder) Last() port.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
