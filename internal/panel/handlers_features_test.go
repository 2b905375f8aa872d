package panel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elisa-renault/Galactia/internal/domain"
)

func TestToggleFeatureRequiresPremium(t *testing.T) {
	srv := newTestServer(t, func(s *Server) {
		s.premiumGate = &mockPremiumGate{premium: false}
	})

	form := url.Values{"feature_key": {"twitch"}, "enabled": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/guilds/555/features", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.Set(ctxKeyUserID, int64(42))
	c.Set(ctxKeyGuild, &domain.Guild{ID: 10, DiscordID: "555"})

	err := callHandler(srv.handleToggleFeature, c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestToggleFeatureSavesFlagAndPublishes(t *testing.T) {
	var gotGuildID, gotFeatureID int64
	var gotEnabled bool

	invalidator := &mockInvalidator{}
	audit := &mockAudit{}
	srv := newTestServer(t, func(s *Server) {
		s.features = &mockFeatures{
			setFlagFn: func(ctx context.Context, guildID, featureID int64, enabled bool, updatedBy *int64) error {
				gotGuildID, gotFeatureID, gotEnabled = guildID, featureID, enabled
				return nil
			},
		}
		s.invalidator = invalidator
		s.audit = audit
	})

	form := url.Values{"feature_key": {"ai"}, "enabled": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/guilds/555/features", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.Set(ctxKeyUserID, int64(42))
	c.Set(ctxKeyGuild, &domain.Guild{ID: 10, DiscordID: "555"})

	err := srv.handleToggleFeature(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/guilds/555/features", rec.Header().Get("Location"))
	assert.Equal(t, int64(10), gotGuildID)
	assert.Equal(t, int64(2), gotFeatureID)
	assert.True(t, gotEnabled)
	assert.Equal(t, []string{"555"}, invalidator.published)
	assert.Equal(t, []string{"feature_toggle"}, audit.records)
}

func TestToggleFeatureUnknownKey(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{"feature_key": {"nonsense"}}
	req := httptest.NewRequest(http.MethodPost, "/guilds/555/features", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)
	c.Set(ctxKeyUserID, int64(42))
	c.Set(ctxKeyGuild, &domain.Guild{ID: 10, DiscordID: "555"})

	err := callHandler(srv.handleToggleFeature, c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
