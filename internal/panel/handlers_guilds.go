package panel

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/elisa-renault/Galactia/internal/errors"
)

// manageableGuilds fetches the user's guilds from Discord with the stored
// OAuth token and keeps only the ones they can administer.
func (s *Server) manageableGuilds(ctx context.Context, c echo.Context) ([]discordGuild, error) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return nil, apperrors.ValidationError("invalid session")
	}
	tokenID, ok := session.Values[sessionKeyTokenID].(string)
	if !ok || tokenID == "" {
		return nil, apperrors.ValidationError("missing OAuth token")
	}

	token, err := s.tokens.Get(ctx, tokenID)
	if err != nil {
		return nil, apperrors.ValidationError("expired OAuth token")
	}

	guilds, err := s.oauthClient.FetchGuilds(ctx, token.AccessToken)
	if err != nil {
		return nil, apperrors.ExternalError("failed to fetch guilds from Discord", err)
	}

	var manageable []discordGuild
	for _, g := range guilds {
		if g.canManage() {
			manageable = append(manageable, g)
		}
	}
	return manageable, nil
}

func (s *Server) handleGuilds(c echo.Context) error {
	ctx := c.Request().Context()

	guilds, err := s.manageableGuilds(ctx, c)
	if err != nil {
		var structured *apperrors.Error
		if errors.As(err, &structured) && structured.Type == apperrors.TypeValidation {
			// Token gone or expired: a fresh login is the fix, not a 400.
			return c.Redirect(http.StatusFound, "/auth/login")
		}
		return err
	}

	user, err := s.users.GetByID(ctx, currentUserID(c))
	if err != nil {
		return apperrors.InternalError("failed to load user", err)
	}

	data := map[string]any{
		"Username":    user.Username,
		"Guilds":      guilds,
		"IsSiteAdmin": user.IsSiteAdmin,
		"CSRFToken":   c.Get("csrf"),
	}
	return s.renderTemplate(c, "guilds.html", data)
}

// handleSelectGuild registers the guild and the user's membership, then
// sends them to the guild's feature page. The role is derived from what
// Discord reports, not from a form value.
func (s *Server) handleSelectGuild(c echo.Context) error {
	ctx := c.Request().Context()
	guildDiscordID := c.Param("id")

	guilds, err := s.manageableGuilds(ctx, c)
	if err != nil {
		return err
	}

	var selected *discordGuild
	for i := range guilds {
		if guilds[i].ID == guildDiscordID {
			selected = &guilds[i]
			break
		}
	}
	if selected == nil {
		return apperrors.ForbiddenError("you cannot manage this guild")
	}

	guild, err := s.guilds.Upsert(ctx, selected.ID, selected.Name, selected.Icon)
	if err != nil {
		return apperrors.InternalError("failed to save guild", err)
	}

	role := "admin"
	if selected.Owner {
		role = "owner"
	}
	if err := s.guilds.UpsertMember(ctx, currentUserID(c), guild.ID, role); err != nil {
		return apperrors.InternalError("failed to save membership", err)
	}

	return c.Redirect(http.StatusFound, "/guilds/"+guildDiscordID+"/features")
}
