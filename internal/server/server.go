// Package server runs the status endpoint behind the front-end welcome page.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flakelab/internal/observability"
	"flakelab/internal/settings"
	"flakelab/pkg/errors"
)

var errNotConnected = errors.New(errors.ErrCodeNotConnected, "no warehouse connection")

// VersionChecker probes the warehouse, normally snowflake.Executor
type VersionChecker interface {
	CurrentVersion(ctx context.Context) (string, error)
}

// Server serves /, /health and /settings
type Server struct {
	settings *settings.Settings
	health   *observability.DatabaseHealthCheck
	log      *zap.Logger
	engine   *gin.Engine
}

// New builds the router. A nil checker reports the service as down.
func New(s *settings.Settings, checker VersionChecker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	probe := func(ctx context.Context) (string, error) {
		if checker == nil {
			return "", errNotConnected
		}
		return checker.CurrentVersion(ctx)
	}
	timeout := time.Duration(s.QueryTimeoutSeconds) * time.Second

	srv := &Server{
		settings: s,
		health:   observability.NewDatabaseHealthCheck("snowflake", timeout, probe),
		log:      log,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), srv.requestLogger)
	engine.GET("/", srv.index)
	engine.GET("/health", srv.status)
	engine.GET("/settings", srv.publicSettings)
	srv.engine = engine
	return srv
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.settings.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("🌐 Status server listening", zap.String("addr", httpSrv.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("Shutting down status server")
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app_name":        s.settings.AppName,
		"version":         s.settings.AppVersion,
		"embedding_model": s.settings.EmbeddingModel,
	})
}

func (s *Server) status(c *gin.Context) {
	res := s.health.Check(c.Request.Context())
	if res.Status != observability.HealthStatusUp {
		s.log.Warn("health check failed", zap.String("reason", res.Message))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": res.Details["version"]})
}

func (s *Server) publicSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Public())
}

func (s *Server) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)))
}
