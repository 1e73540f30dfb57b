// Package server exposes deck generation over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"auto_slide_deck_generator/config"
	"auto_slide_deck_generator/deck"
	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/logging"
)

// Decks is the generation backend; *deck.Service satisfies it.
type Decks interface {
	Available() error
	Build(ctx context.Context, spec generator.Spec) (deck.Result, error)
	BuildFile(ctx context.Context, spec generator.Spec) (deck.Result, error)
}

// Files resolves stored deck names; *render.FileStore satisfies it.
type Files interface {
	Path(name string) (string, error)
}

type Server struct {
	echo   *echo.Echo
	decks  Decks
	files  Files
	cfg    config.ServerConfig
	logger *slog.Logger
}

func New(decks Decks, files Files, cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	if decks == nil || files == nil {
		return nil, errors.New("deck service and file store are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{decks: decks, files: files, cfg: cfg, logger: logger}
	s.echo = s.routes()
	return s, nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				s.logger.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.logger.WarnContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  s.cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderXRequestID},
		ExposeHeaders: []string{echo.HeaderContentDisposition, echo.HeaderXRequestID, "X-Deck-Theme"},
	}))

	e.GET("/", s.handleRoot)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/themes", s.handleThemes)
	api.GET("/decks/:name", s.handleDownload)

	var limit []echo.MiddlewareFunc
	if s.cfg.RateLimit.RPS > 0 {
		limit = append(limit, newRateLimiter(rate.Limit(s.cfg.RateLimit.RPS), s.cfg.RateLimit.Burst).middleware())
	}
	api.POST("/decks", s.handleCreate, limit...)
	api.POST("/decks/stream", s.handleStream, limit...)
	return e
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on the configured address until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "address", s.cfg.Address)
	if err := s.echo.Start(s.cfg.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
