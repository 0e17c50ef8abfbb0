// Package server exposes a Publisher over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/alnah/go-mdpublish"
)

// GeneratorFactory builds the slide generator for one convert request.
// Called per request so missing credentials surface as a request error.
type GeneratorFactory func(ctx context.Context) (mdpublish.Generator, error)

// Config holds server settings.
type Config struct {
	Addr           string
	CORSOrigins    []string // empty = any origin
	MaxUploadBytes int64    // 0 = no limit beyond the Publisher's own
	Provider       string   // reported in convert responses
	UploadRate     float64  // upload and convert requests per second per client, 0 = unlimited
	UploadBurst    int      // bucket size, at least 1
}

// Timeouts for the HTTP server. Writes stay open long enough for a
// generation request to finish.
const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 5 * time.Minute
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	multipartMemory = 8 << 20
)

// Server routes upload, convert and static requests to a Publisher.
type Server struct {
	engine       *gin.Engine
	handler      http.Handler
	pub          *mdpublish.Publisher
	newGenerator GeneratorFactory
	cfg          Config
	logger       *slog.Logger
	uploadsRoot  string // absolute public directory for the route prefix
}

// New creates a Server. newGenerator may be nil, in which case convert
// requests fail with ErrNoGenerator.
func New(pub *mdpublish.Publisher, newGenerator GeneratorFactory, cfg Config, logger *slog.Logger) (*Server, error) {
	if pub == nil {
		return nil, errors.New("server: nil publisher")
	}
	if logger == nil {
		logger = slog.Default()
	}

	uploadsRoot, err := filepath.Abs(filepath.Join(pub.PublicDir(), pub.RoutePrefix()))
	if err != nil {
		return nil, fmt.Errorf("resolving public directory: %w", err)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = multipartMemory

	srv := &Server{
		engine:       engine,
		pub:          pub,
		newGenerator: newGenerator,
		cfg:          cfg,
		logger:       logger,
		uploadsRoot:  uploadsRoot,
	}

	engine.Use(recovery(logger), requestLogger(logger))

	engine.GET("/healthz", srv.handleHealth)
	writes := []gin.HandlerFunc{}
	if cfg.UploadRate > 0 {
		writes = append(writes, srv.rateLimit(newClientLimiters(cfg.UploadRate, cfg.UploadBurst)))
	}
	engine.POST("/upload", append(writes, srv.handleUpload)...)
	engine.POST("/api/convert", append(writes, srv.handleConvert)...)
	if prefix := pub.RoutePrefix(); prefix != "" {
		engine.GET("/"+prefix+"/*path", srv.handleUploadFile)
	} else {
		engine.NoRoute(srv.handleUploadFile)
	}

	srv.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	}).Handler(engine)

	return srv, nil
}

// Handler returns the CORS-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr, "route_prefix", s.pub.RoutePrefix())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
