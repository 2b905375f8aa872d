package panel

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elisa-renault/Galactia/internal/domain"
	apperrors "github.com/elisa-renault/Galactia/internal/errors"
	"github.com/elisa-renault/Galactia/internal/features"
)

var premiumTiers = map[string]bool{"basic": true, "plus": true, "lifetime": true}

func (s *Server) handlePremiumPage(c echo.Context) error {
	rows, err := s.premium.ListActive(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load premium grants", err)
	}

	data := map[string]any{
		"Grants":    rows,
		"CSRFToken": c.Get("csrf"),
	}
	return s.renderTemplate(c, "admin_premium.html", data)
}

func (s *Server) handlePremiumGrant(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	guildDiscordID := c.FormValue("guild_discord_id")
	tier := c.FormValue("tier")
	if !premiumTiers[tier] {
		return apperrors.ValidationError("unknown premium tier")
	}

	var expiresAt *time.Time
	if raw := c.FormValue("expires_at"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.ValidationError("expires_at must be YYYY-MM-DD")
		}
		expiresAt = &t
	}

	guild, err := s.guilds.GetByDiscordID(ctx, guildDiscordID)
	if errors.Is(err, domain.ErrGuildNotFound) {
		return apperrors.NotFoundError("guild is not registered in the panel")
	}
	if err != nil {
		return apperrors.InternalError("failed to load guild", err)
	}

	if err := s.premium.Grant(ctx, guild.ID, tier, expiresAt, &userID); err != nil {
		return apperrors.InternalError("failed to grant premium", err)
	}

	if err := s.audit.Record(ctx, guild.ID, userID, "premium_grant", map[string]any{
		"tier":       tier,
		"expires_at": c.FormValue("expires_at"),
	}); err != nil {
		return apperrors.InternalError("failed to record audit entry", err)
	}

	return c.Redirect(http.StatusFound, "/admin/premium")
}

func (s *Server) handlePremiumRevoke(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	guild, err := s.guilds.GetByDiscordID(ctx, c.FormValue("guild_discord_id"))
	if errors.Is(err, domain.ErrGuildNotFound) {
		return apperrors.NotFoundError("guild is not registered in the panel")
	}
	if err != nil {
		return apperrors.InternalError("failed to load guild", err)
	}

	err = s.premium.Revoke(ctx, guild.ID)
	if errors.Is(err, domain.ErrPremiumNotFound) {
		return apperrors.NotFoundError("guild has no premium grant")
	}
	if err != nil {
		return apperrors.InternalError("failed to revoke premium", err)
	}

	if err := s.audit.Record(ctx, guild.ID, userID, "premium_revoke", nil); err != nil {
		return apperrors.InternalError("failed to record audit entry", err)
	}

	return c.Redirect(http.StatusFound, "/admin/premium")
}

// handleSeedFeatures re-inserts the built-in feature rows. Useful after a
// fresh database or when a feature was removed by hand.
func (s *Server) handleSeedFeatures(c echo.Context) error {
	if err := s.features.Seed(c.Request().Context(), features.Defaults()); err != nil {
		return apperrors.InternalError("failed to seed features", err)
	}
	return c.Redirect(http.StatusFound, "/admin/premium")
}
