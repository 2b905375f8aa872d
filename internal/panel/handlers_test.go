package panel

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/elisa-renault/Galactia/internal/config"
	"github.com/elisa-renault/Galactia/internal/domain"
	apperrors "github.com/elisa-renault/Galactia/internal/errors"
	"github.com/elisa-renault/Galactia/internal/redis"
)

// --- Mock implementations ---

type mockUsers struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.User, error)
	upsertFn  func(ctx context.Context, discordID, username, displayName, avatar string) (*domain.User, error)
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.User{ID: id, Username: "tester"}, nil
}

func (m *mockUsers) Upsert(ctx context.Context, discordID, username, displayName, avatar string) (*domain.User, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, discordID, username, displayName, avatar)
	}
	return &domain.User{ID: 1, DiscordID: discordID, Username: username}, nil
}

type mockGuilds struct {
	getByDiscordIDFn func(ctx context.Context, discordID string) (*domain.Guild, error)
	getMemberFn      func(ctx context.Context, userID, guildID int64) (*domain.GuildMember, error)
	upsertMemberFn   func(ctx context.Context, userID, guildID int64, role string) error
	setSettingFn     func(ctx context.Context, guildID int64, key, value string) error
}

func (m *mockGuilds) GetByDiscordID(ctx context.Context, discordID string) (*domain.Guild, error) {
	if m.getByDiscordIDFn != nil {
		return m.getByDiscordIDFn(ctx, discordID)
	}
	return &domain.Guild{ID: 10, DiscordID: discordID, Name: "Test Guild"}, nil
}

func (m *mockGuilds) Upsert(ctx context.Context, discordID, name, icon string) (*domain.Guild, error) {
	return &domain.Guild{ID: 10, DiscordID: discordID, Name: name, Icon: icon}, nil
}

func (m *mockGuilds) UpsertMember(ctx context.Context, userID, guildID int64, role string) error {
	if m.upsertMemberFn != nil {
		return m.upsertMemberFn(ctx, userID, guildID, role)
	}
	return nil
}

func (m *mockGuilds) GetMember(ctx context.Context, userID, guildID int64) (*domain.GuildMember, error) {
	if m.getMemberFn != nil {
		return m.getMemberFn(ctx, userID, guildID)
	}
	return &domain.GuildMember{UserID: userID, GuildID: guildID, Role: "admin"}, nil
}

func (m *mockGuilds) ListSettings(ctx context.Context, guildID int64) ([]domain.GuildSetting, error) {
	return nil, nil
}

func (m *mockGuilds) SetSetting(ctx context.Context, guildID int64, key, value string) error {
	if m.setSettingFn != nil {
		return m.setSettingFn(ctx, guildID, key, value)
	}
	return nil
}

type mockFeatures struct {
	listFn    func(ctx context.Context) ([]domain.Feature, error)
	setFlagFn func(ctx context.Context, guildID, featureID int64, enabled bool, updatedBy *int64) error
}

func (m *mockFeatures) List(ctx context.Context) ([]domain.Feature, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []domain.Feature{
		{ID: 1, Key: "twitch", Name: "Twitch notifications"},
		{ID: 2, Key: "ai", Name: "AI summaries"},
	}, nil
}

func (m *mockFeatures) ListFlags(ctx context.Context, guildID int64) ([]domain.GuildFeatureFlag, error) {
	return nil, nil
}

func (m *mockFeatures) SetFlag(ctx context.Context, guildID, featureID int64, enabled bool, updatedBy *int64) error {
	if m.setFlagFn != nil {
		return m.setFlagFn(ctx, guildID, featureID, enabled, updatedBy)
	}
	return nil
}

func (m *mockFeatures) Seed(ctx context.Context, features []domain.Feature) error {
	return nil
}

type mockPremiumStore struct{}

func (m *mockPremiumStore) Get(ctx context.Context, guildID int64) (*domain.GuildPremium, error) {
	return nil, domain.ErrPremiumNotFound
}

func (m *mockPremiumStore) Grant(ctx context.Context, guildID int64, tier string, expiresAt *time.Time, grantedBy *int64) error {
	return nil
}

func (m *mockPremiumStore) Revoke(ctx context.Context, guildID int64) error { return nil }

func (m *mockPremiumStore) ListActive(ctx context.Context) ([]domain.PremiumRow, error) {
	return nil, nil
}

type mockPremiumGate struct {
	premium bool
}

func (m *mockPremiumGate) IsPremium(ctx context.Context, guildDiscordID string) bool {
	return m.premium
}

type mockAudit struct {
	records []string
}

func (m *mockAudit) Record(ctx context.Context, guildID, userID int64, action string, payload map[string]any) error {
	m.records = append(m.records, action)
	return nil
}

func (m *mockAudit) ListByGuild(ctx context.Context, guildID int64, limit int) ([]domain.AuditEntry, error) {
	return nil, nil
}

type mockTokens struct {
	tokens map[string]redis.OAuthToken
}

func newMockTokens() *mockTokens {
	return &mockTokens{tokens: make(map[string]redis.OAuthToken)}
}

func (m *mockTokens) Put(ctx context.Context, sessionID string, token redis.OAuthToken) error {
	m.tokens[sessionID] = token
	return nil
}

func (m *mockTokens) Get(ctx context.Context, sessionID string) (redis.OAuthToken, error) {
	token, ok := m.tokens[sessionID]
	if !ok {
		return redis.OAuthToken{}, redis.ErrTokenNotFound
	}
	return token, nil
}

func (m *mockTokens) Delete(ctx context.Context, sessionID string) error {
	delete(m.tokens, sessionID)
	return nil
}

type mockInvalidator struct {
	published []string
}

func (m *mockInvalidator) PublishFeatureFlagInvalidation(ctx context.Context, guildDiscordID string) error {
	m.published = append(m.published, guildDiscordID)
	return nil
}

type mockOAuth struct {
	exchangeFn    func(ctx context.Context, code string) (*oauthTokenResult, error)
	fetchUserFn   func(ctx context.Context, accessToken string) (*discordUser, error)
	fetchGuildsFn func(ctx context.Context, accessToken string) ([]discordGuild, error)
	exchanged     bool
}

func (m *mockOAuth) AuthorizeURL(state string) string {
	return "https://discord.test/authorize?state=" + state
}

func (m *mockOAuth) ExchangeCode(ctx context.Context, code string) (*oauthTokenResult, error) {
	m.exchanged = true
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, code)
	}
	return &oauthTokenResult{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}, nil
}

func (m *mockOAuth) FetchUser(ctx context.Context, accessToken string) (*discordUser, error) {
	if m.fetchUserFn != nil {
		return m.fetchUserFn(ctx, accessToken)
	}
	return &discordUser{ID: "111", Username: "tester", GlobalName: "Tester"}, nil
}

func (m *mockOAuth) FetchGuilds(ctx context.Context, accessToken string) ([]discordGuild, error) {
	if m.fetchGuildsFn != nil {
		return m.fetchGuildsFn(ctx, accessToken)
	}
	return nil, fmt.Errorf("not implemented")
}

// --- Test helpers ---

func testTemplates(t *testing.T) *template.Template {
	t.Helper()
	tmpl := template.Must(template.New("login.html").Parse(`Login {{.DiscordAuthURL}}`))
	template.Must(tmpl.New("guilds.html").Parse(`Guilds {{.Username}}`))
	template.Must(tmpl.New("features.html").Parse(`Features {{.Guild.Name}}`))
	template.Must(tmpl.New("settings.html").Parse(`Settings {{.Guild.Name}}`))
	template.Must(tmpl.New("admin_premium.html").Parse(`Premium`))
	return tmpl
}

func newTestServer(t *testing.T, opts ...func(*Server)) *Server {
	t.Helper()

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{Path: "/", MaxAge: 3600}

	e := echo.New()
	e.Use(apperrors.ErrorHandlingMiddleware())

	srv := &Server{
		echo:         e,
		config:       &config.Config{PanelHost: "127.0.0.1", PanelPort: "0"},
		users:        &mockUsers{},
		guilds:       &mockGuilds{},
		features:     &mockFeatures{},
		premium:      &mockPremiumStore{},
		premiumGate:  &mockPremiumGate{premium: true},
		audit:        &mockAudit{},
		tokens:       newMockTokens(),
		invalidator:  &mockInvalidator{},
		oauthClient:  &mockOAuth{},
		sessionStore: store,
		templates:    testTemplates(t),
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// callHandler wraps a handler with the error middleware, matching the
// registered route chain.
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return apperrors.ErrorHandlingMiddleware()(handler)(c)
}

func newContext(srv *Server, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	return srv.echo.NewContext(req, rec)
}

func setSessionUser(t *testing.T, srv *Server, req *http.Request, rec *httptest.ResponseRecorder, userID int64) {
	t.Helper()
	session, err := srv.sessionStore.Get(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyUser] = strconv.FormatInt(userID, 10)
	require.NoError(t, session.Save(req, rec))
	req.Header.Set("Cookie", rec.Header().Get("Set-Cookie"))
}
