package panel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elisa-renault/Galactia/internal/domain"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireAuthRedirectsWithoutSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/guilds", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)

	err := srv.requireAuth(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRequireAuthPassesWithSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/guilds", nil)
	rec := httptest.NewRecorder()
	setSessionUser(t, srv, req, rec, 42)

	rec = httptest.NewRecorder()
	c := newContext(srv, req, rec)

	var seenUserID int64
	err := srv.requireAuth(func(c echo.Context) error {
		seenUserID = currentUserID(c)
		return c.String(http.StatusOK, "ok")
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), seenUserID)
}

func TestRequireGuildAdminAllowsAdminMember(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/guilds/555/features", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.SetParamNames("id")
	c.SetParamValues("555")
	c.Set(ctxKeyUserID, int64(42))

	err := srv.requireGuildAdmin(func(c echo.Context) error {
		assert.Equal(t, "555", currentGuild(c).DiscordID)
		return c.String(http.StatusOK, "ok")
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireGuildAdminRejectsPlainMember(t *testing.T) {
	srv := newTestServer(t, func(s *Server) {
		s.guilds = &mockGuilds{
			getMemberFn: func(ctx context.Context, userID, guildID int64) (*domain.GuildMember, error) {
				return &domain.GuildMember{UserID: userID, GuildID: guildID, Role: "member"}, nil
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/guilds/555/features", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.SetParamNames("id")
	c.SetParamValues("555")
	c.Set(ctxKeyUserID, int64(42))

	err := callHandler(srv.requireGuildAdmin(okHandler), c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireGuildAdminSiteAdminBypassesMembership(t *testing.T) {
	srv := newTestServer(t, func(s *Server) {
		s.users = &mockUsers{
			getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
				return &domain.User{ID: id, Username: "root", IsSiteAdmin: true}, nil
			},
		}
		s.guilds = &mockGuilds{
			getMemberFn: func(ctx context.Context, userID, guildID int64) (*domain.GuildMember, error) {
				return nil, domain.ErrMemberNotFound
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/guilds/555/features", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.SetParamNames("id")
	c.SetParamValues("555")
	c.Set(ctxKeyUserID, int64(42))

	err := srv.requireGuildAdmin(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireGuildAdminUnknownGuild(t *testing.T) {
	srv := newTestServer(t, func(s *Server) {
		s.guilds = &mockGuilds{
			getByDiscordIDFn: func(ctx context.Context, discordID string) (*domain.Guild, error) {
				return nil, domain.ErrGuildNotFound
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/guilds/999/features", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")
	c.Set(ctxKeyUserID, int64(42))

	err := callHandler(srv.requireGuildAdmin(okHandler), c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireSiteAdminRejectsRegularUser(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/premium", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.Set(ctxKeyUserID, int64(42))

	err := callHandler(srv.requireSiteAdmin(okHandler), c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
