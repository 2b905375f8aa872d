package panel

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/elisa-renault/Galactia/internal/domain"
	apperrors "github.com/elisa-renault/Galactia/internal/errors"
)

// Context keys set by the middleware chain.
const (
	ctxKeyUserID = "userID"
	ctxKeyGuild  = "guild"
)

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			return c.Redirect(http.StatusFound, "/auth/login")
		}

		raw, ok := session.Values[sessionKeyUser].(string)
		if !ok {
			return c.Redirect(http.StatusFound, "/auth/login")
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Redirect(http.StatusFound, "/auth/login")
		}

		c.Set(ctxKeyUserID, userID)
		return next(c)
	}
}

// requireGuildAdmin resolves the :id path parameter (a guild Discord id)
// and checks the user holds a managing role on that guild. Site admins
// pass regardless of membership.
func (s *Server) requireGuildAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Get(ctxKeyUserID).(int64)
		ctx := c.Request().Context()

		guild, err := s.guilds.GetByDiscordID(ctx, c.Param("id"))
		if err != nil {
			return apperrors.NotFoundError("guild not found")
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return apperrors.InternalError("failed to load user", err)
		}
		if user.IsSiteAdmin {
			c.Set(ctxKeyGuild, guild)
			return next(c)
		}

		member, err := s.guilds.GetMember(ctx, userID, guild.ID)
		if err != nil || !domain.AdminRoles[member.Role] {
			return apperrors.ForbiddenError("you cannot manage this guild")
		}

		c.Set(ctxKeyGuild, guild)
		return next(c)
	}
}

func (s *Server) requireSiteAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Get(ctxKeyUserID).(int64)

		user, err := s.users.GetByID(c.Request().Context(), userID)
		if err != nil {
			return apperrors.InternalError("failed to load user", err)
		}
		if !user.IsSiteAdmin {
			return apperrors.ForbiddenError("site admin required")
		}
		return next(c)
	}
}

func currentUserID(c echo.Context) int64 {
	return c.Get(ctxKeyUserID).(int64)
}

func currentGuild(c echo.Context) *domain.Guild {
	return c.Get(ctxKeyGuild).(*domain.Guild)
}
