// Package panel serves the web admin panel: Discord OAuth login, per-guild
// feature flags and settings, and the site-admin premium management.
package panel

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/elisa-renault/Galactia/internal/config"
	"github.com/elisa-renault/Galactia/internal/domain"
	"github.com/elisa-renault/Galactia/internal/redis"
	"github.com/elisa-renault/Galactia/web"
)

// Session keys
const (
	sessionName          = "galactia-session"
	sessionKeyUser       = "user_id"
	sessionKeyTokenID    = "token_id"
	sessionKeyOAuthState = "oauth_state"
)

type userStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Upsert(ctx context.Context, discordID, username, displayName, avatar string) (*domain.User, error)
}

type guildStore interface {
	GetByDiscordID(ctx context.Context, discordID string) (*domain.Guild, error)
	Upsert(ctx context.Context, discordID, name, icon string) (*domain.Guild, error)
	UpsertMember(ctx context.Context, userID, guildID int64, role string) error
	GetMember(ctx context.Context, userID, guildID int64) (*domain.GuildMember, error)
	ListSettings(ctx context.Context, guildID int64) ([]domain.GuildSetting, error)
	SetSetting(ctx context.Context, guildID int64, key, value string) error
}

type featureStore interface {
	List(ctx context.Context) ([]domain.Feature, error)
	ListFlags(ctx context.Context, guildID int64) ([]domain.GuildFeatureFlag, error)
	SetFlag(ctx context.Context, guildID, featureID int64, enabled bool, updatedBy *int64) error
	Seed(ctx context.Context, features []domain.Feature) error
}

type premiumStore interface {
	Get(ctx context.Context, guildID int64) (*domain.GuildPremium, error)
	Grant(ctx context.Context, guildID int64, tier string, expiresAt *time.Time, grantedBy *int64) error
	Revoke(ctx context.Context, guildID int64) error
	ListActive(ctx context.Context) ([]domain.PremiumRow, error)
}

type auditStore interface {
	Record(ctx context.Context, guildID, userID int64, action string, payload map[string]any) error
	ListByGuild(ctx context.Context, guildID int64, limit int) ([]domain.AuditEntry, error)
}

type tokenStore interface {
	Put(ctx context.Context, sessionID string, token redis.OAuthToken) error
	Get(ctx context.Context, sessionID string) (redis.OAuthToken, error)
	Delete(ctx context.Context, sessionID string) error
}

type invalidator interface {
	PublishFeatureFlagInvalidation(ctx context.Context, guildDiscordID string) error
}

// premiumGate answers whether a guild is premium, combining database
// grants with the built-in and configured premium guild lists.
type premiumGate interface {
	IsPremium(ctx context.Context, guildDiscordID string) bool
}

// HealthCheck is a named readiness probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps collects the panel's collaborators.
type Deps struct {
	Users        userStore
	Guilds       guildStore
	Features     featureStore
	Premium      premiumStore
	PremiumGate  premiumGate
	Audit        auditStore
	Tokens       tokenStore
	Invalidator  invalidator
	OAuth        discordOAuthClient
	HealthChecks []HealthCheck
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	users       userStore
	guilds      guildStore
	features    featureStore
	premium     premiumStore
	premiumGate premiumGate
	audit       auditStore
	tokens      tokenStore
	invalidator invalidator

	oauthClient  discordOAuthClient
	sessionStore *sessions.CookieStore
	templates    *template.Template
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, d Deps) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	oauth := d.OAuth
	if oauth == nil {
		oauth = newDiscordOAuthClient(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI)
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		users:        d.Users,
		guilds:       d.Guilds,
		features:     d.Features,
		premium:      d.Premium,
		premiumGate:  d.PremiumGate,
		audit:        d.Audit,
		tokens:       d.Tokens,
		invalidator:  d.Invalidator,
		oauthClient:  oauth,
		sessionStore: setupSessionStore(cfg),
		templates:    templates,
		healthChecks: d.HealthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	addr := s.config.PanelHost + ":" + s.config.PanelPort
	slog.Info("Starting panel", "addr", addr)
	if err := s.echo.Start(addr); err != nil {
		return fmt.Errorf("failed to start panel: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown panel: %w", err)
	}
	return nil
}

func (s *Server) renderTemplate(c echo.Context, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(http.StatusOK, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
