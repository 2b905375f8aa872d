package bot

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elisa-renault/Galactia/internal/version"
)

// HealthCheck is a named readiness probe for a bot dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HTTPServer exposes liveness, readiness, metrics and version endpoints
// alongside the Discord gateway connection.
type HTTPServer struct {
	echo      *echo.Echo
	addr      string
	checks    []HealthCheck
	startTime time.Time
}

// NewHTTPServer builds the bot's observability endpoint on the given port.
func NewHTTPServer(port string, checks []HealthCheck) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &HTTPServer{
		echo:      e,
		addr:      ":" + port,
		checks:    checks,
		startTime: time.Now(),
	}

	e.GET("/health/live", s.handleLiveness)
	e.GET("/health/ready", s.handleReadiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/version", s.handleVersion)

	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *HTTPServer) Start() error {
	slog.Info("Starting bot HTTP server", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *HTTPServer) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *HTTPServer) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":       "unhealthy",
				"failed_check": check.Name,
				"error":        err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) handleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
