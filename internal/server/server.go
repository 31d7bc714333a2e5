package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/logging"
	"github.com/agbru/sinsum/internal/metrics"
	"github.com/agbru/sinsum/internal/orchestration"
	"github.com/agbru/sinsum/internal/quadrature"
)

const (
	// ShutdownTimeout bounds the drain of in-flight requests.
	ShutdownTimeout = 5 * time.Second
	// DefaultRequestTimeout applies when Config.RequestTimeout is zero.
	DefaultRequestTimeout = 60 * time.Second
	// readHeaderTimeout guards against slow-header clients.
	readHeaderTimeout = 5 * time.Second
)

// Config holds the defaults used for missing query parameters and the
// service limits.
type Config struct {
	Steps          int
	Terms          int
	Threads        int
	Partition      string
	Scheduler      string
	RequestTimeout time.Duration
	Security       SecurityConfig
}

// Server serves integrations over HTTP.
type Server struct {
	cfg     Config
	engine  *gin.Engine
	metrics *metrics.Registry
	logger  logging.Logger
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// New builds a Server and its routes. reg may be nil, in which case a
// private registry is created.
func New(cfg Config, reg *metrics.Registry, logger logging.Logger) (*Server, error) {
	if reg == nil {
		var err error
		if reg, err = metrics.NewRegistry(); err != nil {
			return nil, err
		}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{cfg: cfg, metrics: reg, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	engine.Use(securityMiddleware(cfg.Security), s.metricsMiddleware(), s.loggingMiddleware())

	engine.GET("/v1/integrate", s.handleIntegrate)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(reg.Handler()))
	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, giving in-flight requests ShutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", logging.Duration("drain", ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIntegrate(c *gin.Context) {
	steps, err := s.intParam(c, "steps", s.cfg.Steps, s.cfg.Security.MaxSteps)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	terms, err := s.intParam(c, "terms", s.cfg.Terms, s.cfg.Security.MaxTerms)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	threads, err := s.intParam(c, "threads", s.cfg.Threads, s.cfg.Security.MaxThreads)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	partition, err := quadrature.ParsePartition(c.DefaultQuery("partition", s.cfg.Partition))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	scheduler, err := quadrature.ParseScheduler(c.DefaultQuery("scheduler", s.cfg.Scheduler))
	if err != nil {
		s.badRequest(c, err)
		return
	}

	it, err := quadrature.NewIntegrator(quadrature.Options{Threads: threads, Partition: partition, Scheduler: scheduler})
	if err != nil {
		s.badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()
	run := orchestration.ExecuteIntegration(ctx, it, steps, terms, orchestration.NullProgressReporter{}, nil)
	s.metrics.ObserveIntegration(run.Result, run.Err)

	if run.Err != nil {
		switch apperrors.ExitCode(run.Err) {
		case apperrors.ExitErrorConfig:
			c.JSON(http.StatusBadRequest, errorResponse{Error: run.Err.Error()})
		case apperrors.ExitErrorTimeout:
			c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "integration timed out"})
		default:
			s.logger.Error("integration failed", run.Err, logging.Int("steps", steps), logging.Int("threads", threads))
			c.JSON(http.StatusInternalServerError, errorResponse{Error: run.Err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, orchestration.NewResultView(run.Result, c.Query("partials") == "true"))
}

// intParam reads a positive integer query parameter, falling back to def.
func (s *Server) intParam(c *gin.Context, name string, def, limit int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationError{Field: name, Message: fmt.Sprintf("%q is not an integer", raw)}
	}
	if limit > 0 && v > limit {
		return 0, apperrors.ValidationError{Field: name, Message: fmt.Sprintf("must be at most %d, got %d", limit, v)}
	}
	return v, nil
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.metrics.ObserveIntegration(quadrature.Result{}, err)
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		c.Next()
		s.metrics.ObserveRequest(c.FullPath(), c.Writer.Status())
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", time.Since(start)),
		)
	}
}
