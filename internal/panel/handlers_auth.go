package panel

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/elisa-renault/Galactia/internal/metrics"
	"github.com/elisa-renault/Galactia/internal/redis"
)

const oauthTimeout = 10 * time.Second

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *Server) handleLoginPage(c echo.Context) error {
	state, err := generateOAuthState()
	if err != nil {
		slog.Error("Failed to generate OAuth state", "error", err)
		return c.String(http.StatusInternalServerError, "Internal error")
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.Warn("Failed to get session for OAuth state", "error", err)
	}
	session.Values[sessionKeyOAuthState] = state
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save OAuth state session", "error", err)
		return c.String(http.StatusInternalServerError, "Internal error")
	}

	data := map[string]any{
		"DiscordAuthURL": s.oauthClient.AuthorizeURL(state),
	}
	return s.renderTemplate(c, "login.html", data)
}

func (s *Server) handleOAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.String(http.StatusBadRequest, "Missing code parameter")
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid session")
	}
	expectedState, ok := session.Values[sessionKeyOAuthState].(string)
	if !ok || expectedState == "" {
		return c.String(http.StatusBadRequest, "Missing OAuth state")
	}
	if c.QueryParam("state") != expectedState {
		metrics.PanelLoginsTotal.WithLabelValues("denied").Inc()
		return c.String(http.StatusBadRequest, "Invalid OAuth state")
	}
	delete(session.Values, sessionKeyOAuthState)

	ctx, cancel := context.WithTimeout(c.Request().Context(), oauthTimeout)
	defer cancel()

	token, err := s.oauthClient.ExchangeCode(ctx, code)
	if err != nil {
		slog.Error("Failed to exchange code", "error", err)
		metrics.PanelLoginsTotal.WithLabelValues("error").Inc()
		return c.String(http.StatusInternalServerError, "Failed to authenticate with Discord")
	}

	identity, err := s.oauthClient.FetchUser(ctx, token.AccessToken)
	if err != nil {
		slog.Error("Failed to fetch user", "error", err)
		metrics.PanelLoginsTotal.WithLabelValues("error").Inc()
		return c.String(http.StatusInternalServerError, "Failed to authenticate with Discord")
	}

	user, err := s.users.Upsert(ctx, identity.ID, identity.Username, identity.GlobalName, identity.Avatar)
	if err != nil {
		slog.Error("Failed to save user", "error", err)
		metrics.PanelLoginsTotal.WithLabelValues("error").Inc()
		return c.String(http.StatusInternalServerError, "Failed to save user")
	}

	// The access token lives in Redis, keyed by a random id in the cookie,
	// so the cookie never carries the token itself.
	tokenID := uuid.NewString()
	err = s.tokens.Put(ctx, tokenID, redis.OAuthToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	})
	if err != nil {
		slog.Error("Failed to store OAuth token", "error", err)
		metrics.PanelLoginsTotal.WithLabelValues("error").Inc()
		return c.String(http.StatusInternalServerError, "Failed to save session")
	}

	session.Values[sessionKeyUser] = strconv.FormatInt(user.ID, 10)
	session.Values[sessionKeyTokenID] = tokenID
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save session", "error", err)
		metrics.PanelLoginsTotal.WithLabelValues("error").Inc()
		return c.String(http.StatusInternalServerError, "Failed to save session")
	}

	metrics.PanelLoginsTotal.WithLabelValues("success").Inc()
	return c.Redirect(http.StatusFound, "/guilds")
}

func (s *Server) handleLogout(c echo.Context) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.Warn("Failed to get session during logout", "error", err)
		session, err = s.sessionStore.New(c.Request(), sessionName)
		if err != nil {
			slog.Error("Failed to create new session during logout", "error", err)
		}
	}

	if tokenID, ok := session.Values[sessionKeyTokenID].(string); ok && tokenID != "" {
		if err := s.tokens.Delete(c.Request().Context(), tokenID); err != nil {
			slog.Warn("Failed to delete OAuth token", "error", err)
		}
	}

	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save logout session", "error", err)
		return c.String(http.StatusInternalServerError, "Failed to logout due to session error. Please try again or clear your browser cookies.")
	}

	return c.Redirect(http.StatusFound, "/auth/login")
}
