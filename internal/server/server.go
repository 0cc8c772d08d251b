// Package server exposes the investigation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fraudlens/internal/config"
	"fraudlens/internal/pipeline"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server hosts the investigation API.
type Server struct {
	cfg      *config.Config
	echo     *echo.Echo
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	sentryOn bool
}

// New builds the server and registers routes and middleware.
func New(cfg *config.Config, p *pipeline.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.GetReadTimeout()
	e.Server.WriteTimeout = cfg.GetWriteTimeout()

	s := &Server{cfg: cfg, echo: e, pipeline: p, logger: logger}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())

	e.GET("/healthz", s.handleHealth)
	api := e.Group("/api/v1")
	api.POST("/investigate", s.handleInvestigate)
	api.GET("/investigations", s.handleListInvestigations)
	api.GET("/investigations/:id", s.handleGetInvestigation)
	api.GET("/tools", s.handleListTools)

	return s
}

// requestLogger logs one line per request with latency and status.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				s.logger.Warn("request", fields...)
				return nil
			}
			s.logger.Info("request", fields...)
			return nil
		},
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if dsn := s.cfg.Server.SentryDSN; dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Release:     s.cfg.Name + "@" + s.cfg.Version,
			Environment: "server",
		}); err != nil {
			return fmt.Errorf("server: sentry init: %w", err)
		}
		s.sentryOn = true
		defer sentry.Flush(2 * time.Second)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Server.ListenAddr)
	}()
	s.logger.Info("server listening", zap.String("addr", s.cfg.Server.ListenAddr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	<-errCh
	return nil
}

// captureError forwards server-side failures to Sentry when configured.
func (s *Server) captureError(err error) {
	if s.sentryOn && err != nil {
		sentry.CaptureException(err)
	}
}
