package panel

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/elisa-renault/Galactia/internal/errors"
	"github.com/elisa-renault/Galactia/internal/metrics"
)

// featureView is one row of the feature toggle page.
type featureView struct {
	Key         string
	Name        string
	Description string
	Enabled     bool
}

func (s *Server) handleFeaturesPage(c echo.Context) error {
	ctx := c.Request().Context()
	guild := currentGuild(c)

	features, err := s.features.List(ctx)
	if err != nil {
		return apperrors.InternalError("failed to load features", err)
	}
	flags, err := s.features.ListFlags(ctx, guild.ID)
	if err != nil {
		return apperrors.InternalError("failed to load feature flags", err)
	}

	enabled := make(map[int64]bool, len(flags))
	for _, f := range flags {
		enabled[f.FeatureID] = f.Enabled
	}

	views := make([]featureView, 0, len(features))
	for _, f := range features {
		views = append(views, featureView{
			Key:         f.Key,
			Name:        f.Name,
			Description: f.Description,
			Enabled:     enabled[f.ID],
		})
	}

	data := map[string]any{
		"Guild":     guild,
		"Features":  views,
		"IsPremium": s.premiumGate.IsPremium(ctx, guild.DiscordID),
		"CSRFToken": c.Get("csrf"),
	}
	return s.renderTemplate(c, "features.html", data)
}

func (s *Server) handleToggleFeature(c echo.Context) error {
	ctx := c.Request().Context()
	guild := currentGuild(c)
	userID := currentUserID(c)

	if !s.premiumGate.IsPremium(ctx, guild.DiscordID) {
		return apperrors.ForbiddenError("premium required to change features")
	}

	key := c.FormValue("feature_key")
	enabled := c.FormValue("enabled") == "on"

	features, err := s.features.List(ctx)
	if err != nil {
		return apperrors.InternalError("failed to load features", err)
	}
	var featureID int64
	for _, f := range features {
		if f.Key == key {
			featureID = f.ID
			break
		}
	}
	if featureID == 0 {
		return apperrors.ValidationError("unknown feature")
	}

	if err := s.features.SetFlag(ctx, guild.ID, featureID, enabled, &userID); err != nil {
		return apperrors.InternalError("failed to save feature flag", err)
	}

	if err := s.audit.Record(ctx, guild.ID, userID, "feature_toggle", map[string]any{
		"feature": key,
		"enabled": enabled,
	}); err != nil {
		return apperrors.InternalError("failed to record audit entry", err)
	}

	metrics.PanelFlagToggles.WithLabelValues(key).Inc()

	// The bot picks up the change through pub/sub instead of waiting for
	// its next interval refresh.
	if err := s.invalidator.PublishFeatureFlagInvalidation(ctx, guild.DiscordID); err != nil {
		return apperrors.ExternalError("failed to publish invalidation", err)
	}

	return c.Redirect(http.StatusFound, "/guilds/"+guild.DiscordID+"/features")
}
