package panel

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/elisa-renault/Galactia/internal/errors"
)

const (
	maxSettingKeyLen   = 100
	maxSettingValueLen = 1000
)

func (s *Server) handleSettingsPage(c echo.Context) error {
	ctx := c.Request().Context()
	guild := currentGuild(c)

	settings, err := s.guilds.ListSettings(ctx, guild.ID)
	if err != nil {
		return apperrors.InternalError("failed to load settings", err)
	}

	audit, err := s.audit.ListByGuild(ctx, guild.ID, 20)
	if err != nil {
		return apperrors.InternalError("failed to load audit log", err)
	}

	data := map[string]any{
		"Guild":     guild,
		"Settings":  settings,
		"Audit":     audit,
		"CSRFToken": c.Get("csrf"),
	}
	return s.renderTemplate(c, "settings.html", data)
}

func validateSetting(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("setting key cannot be empty")
	}
	if len(key) > maxSettingKeyLen {
		return fmt.Errorf("setting key exceeds %d characters", maxSettingKeyLen)
	}
	if len(value) > maxSettingValueLen {
		return fmt.Errorf("setting value exceeds %d characters", maxSettingValueLen)
	}
	return nil
}

func (s *Server) handleSaveSetting(c echo.Context) error {
	ctx := c.Request().Context()
	guild := currentGuild(c)
	userID := currentUserID(c)

	key := strings.TrimSpace(c.FormValue("key"))
	value := c.FormValue("value")

	if err := validateSetting(key, value); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	if err := s.guilds.SetSetting(ctx, guild.ID, key, value); err != nil {
		return apperrors.InternalError("failed to save setting", err)
	}

	if err := s.audit.Record(ctx, guild.ID, userID, "setting_update", map[string]any{
		"key":   key,
		"value": value,
	}); err != nil {
		return apperrors.InternalError("failed to record audit entry", err)
	}

	return c.Redirect(http.StatusFound, "/guilds/"+guild.DiscordID+"/settings")
}
