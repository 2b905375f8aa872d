package panel

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setOAuthState(t *testing.T, srv *Server, req *http.Request, state string) {
	t.Helper()
	rec := httptest.NewRecorder()
	session, err := srv.sessionStore.Get(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyOAuthState] = state
	require.NoError(t, session.Save(req, rec))
	req.Header.Set("Cookie", rec.Header().Get("Set-Cookie"))
}

func TestOAuthCallbackMissingCode(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)

	require.NoError(t, srv.handleOAuthCallback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthCallbackStateMismatch(t *testing.T) {
	oauth := &mockOAuth{}
	srv := newTestServer(t, func(s *Server) { s.oauthClient = oauth })

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=wrong", nil)
	setOAuthState(t, srv, req, "expected")
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)

	require.NoError(t, srv.handleOAuthCallback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, oauth.exchanged, "code must not be exchanged on state mismatch")
}

func TestOAuthCallbackSuccess(t *testing.T) {
	tokens := newMockTokens()
	srv := newTestServer(t, func(s *Server) { s.tokens = tokens })

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=expected", nil)
	setOAuthState(t, srv, req, "expected")
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)

	require.NoError(t, srv.handleOAuthCallback(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/guilds", rec.Header().Get("Location"))

	require.Len(t, tokens.tokens, 1)
	for _, token := range tokens.tokens {
		assert.Equal(t, "access", token.AccessToken)
		assert.Equal(t, "refresh", token.RefreshToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute,
			"expiry must be derived from the token's expires_in")
	}
}

func TestLoginPageRendersAuthURL(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	c := newContext(srv, req, rec)

	require.NoError(t, srv.handleLoginPage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://discord.test/authorize?state=")
}
