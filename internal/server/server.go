// Package server exposes the audit pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/aleister1102/pagecheck/internal/config"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/aleister1102/pagecheck/internal/monitoring"
	"github.com/aleister1102/pagecheck/internal/rslimiter"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

// Auditor runs a single audit
type Auditor interface {
	Audit(ctx context.Context, req models.AuditRequest) models.AuditResult
}

// Server is the HTTP front of the auditor
type Server struct {
	config  *config.GlobalConfig
	auditor Auditor
	metrics *monitoring.Metrics
	limiter *rslimiter.ResourceLimiter
	router  *gin.Engine
	logger  zerolog.Logger
}

// New builds the router. metrics may be nil, in which case a private set is created.
func New(cfg *config.GlobalConfig, auditor Auditor, metrics *monitoring.Metrics, logger zerolog.Logger) *Server {
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	s := &Server{
		config:  cfg,
		auditor: auditor,
		metrics: metrics,
		limiter: rslimiter.NewResourceLimiter(rslimiter.ResourceLimiterConfig{
			MaxConcurrent:      cfg.AuditConfig.MaxConcurrentAudits,
			SystemMemThreshold: cfg.AuditConfig.SystemMemThreshold,
		}, logger),
		logger: logger.With().Str("module", "Server").Logger(),
	}
	metrics.WatchLimiter(s.limiter)
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	if s.config.Environment != config.EnvDev {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(Recovery(s.logger))
	router.Use(RequestLogger(s.logger))
	router.Use(monitoring.Middleware(s.metrics))

	audit := []gin.HandlerFunc{}
	if s.config.RateLimitConfig.Enabled {
		s.logger.Info().
			Float64("rps", s.config.RateLimitConfig.RequestsPerSecond).
			Int("burst", s.config.RateLimitConfig.Burst).
			Msg("Rate limiting enabled")
		audit = append(audit, GlobalRateLimit(s.config.RateLimitConfig))
	}
	audit = append(audit, s.handleAudit)

	router.GET("/", audit...)
	router.GET("/status", s.handleStatus)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return router
}

// Handler returns the HTTP handler, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully. In-flight audits see their
// request context cancelled once the shutdown timeout passes.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.ServerConfig.Host, strconv.Itoa(s.config.ServerConfig.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msgf("pagecheck listening on port %d", s.config.ServerConfig.Port)
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

	s.logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		_ = httpServer.Close()
		return err
	}
	return nil
}
