// Package ops exposes liveness and collaborator health over HTTP, separate
// from the chat-platform event flow.
package ops

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Pinger probes a collaborator for reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the operational HTTP endpoint.
type Server struct {
	logger           *slog.Logger
	echo             *echo.Echo
	addr             string
	transcriber      Pinger
	captionerEnabled bool
}

// NewServer creates the ops server. transcriber may be nil in tests.
func NewServer(log *slog.Logger, addr string, transcriber Pinger, captionerEnabled bool) *Server {
	if log == nil {
		log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		logger:           log.With(slog.String("service", "ops")),
		echo:             e,
		addr:             addr,
		transcriber:      transcriber,
		captionerEnabled: captionerEnabled,
	}
	e.GET("/ping", s.handlePing)
	e.GET("/health", s.handleHealth)
	return s
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handlePing(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{
		Status: statusOK,
		Checks: map[string]string{},
	}

	if s.captionerEnabled {
		resp.Checks["captioner"] = statusOK
	} else {
		resp.Checks["captioner"] = "disabled"
	}

	if s.transcriber != nil {
		if err := s.transcriber.Ping(ctx); err != nil {
			s.logger.Warn("transcriber probe failed", slog.Any("error", err))
			resp.Checks["transcriber"] = statusError
			resp.Status = statusError
		} else {
			resp.Checks["transcriber"] = statusOK
		}
	}

	code := http.StatusOK
	if resp.Status != statusOK {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
