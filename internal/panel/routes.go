package panel

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/elisa-renault/Galactia/internal/errors"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(apperrors.ErrorHandlingMiddleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         63072000, // 2 years; only sent over HTTPS
		HSTSPreloadEnabled: true,
		ContentSecurityPolicy: "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' https://cdn.discordapp.com; " +
			"frame-ancestors 'none'",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}))

	csrf := s.setupCSRFMiddleware()

	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/guilds")
	})

	// Auth routes (logout requires CSRF, others don't)
	s.echo.GET("/auth/login", s.handleLoginPage)
	s.echo.GET("/auth/callback", s.handleOAuthCallback)
	s.echo.POST("/auth/logout", s.handleLogout, s.requireAuth, csrf)

	// Guild selection
	s.echo.GET("/guilds", s.handleGuilds, s.requireAuth, csrf)
	s.echo.POST("/guilds/:id/select", s.handleSelectGuild, s.requireAuth, csrf)

	// Per-guild management (guild admins only)
	s.echo.GET("/guilds/:id/features", s.handleFeaturesPage, s.requireAuth, s.requireGuildAdmin, csrf)
	s.echo.POST("/guilds/:id/features", s.handleToggleFeature, s.requireAuth, s.requireGuildAdmin, csrf)
	s.echo.GET("/guilds/:id/settings", s.handleSettingsPage, s.requireAuth, s.requireGuildAdmin, csrf)
	s.echo.POST("/guilds/:id/settings", s.handleSaveSetting, s.requireAuth, s.requireGuildAdmin, csrf)

	// Site-admin premium management
	s.echo.GET("/admin/premium", s.handlePremiumPage, s.requireAuth, s.requireSiteAdmin, csrf)
	s.echo.POST("/admin/premium/grant", s.handlePremiumGrant, s.requireAuth, s.requireSiteAdmin, csrf)
	s.echo.POST("/admin/premium/revoke", s.handlePremiumRevoke, s.requireAuth, s.requireSiteAdmin, csrf)
	s.echo.POST("/admin/seed-features", s.handleSeedFeatures, s.requireAuth, s.requireSiteAdmin, csrf)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("Request", attrs...)
			return nil
		},
	})
}

func (s *Server) setupCSRFMiddleware() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "csrf_token",
		CookiePath:     "/",
		CookieMaxAge:   int(s.config.SessionMaxAge.Seconds()),
		CookieHTTPOnly: true,
		CookieSecure:   s.config.IsProduction(),
		CookieSameSite: http.SameSiteStrictMode,
	})
}
