package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	discordAuthURL   = "https://discord.com/api/oauth2/authorize"
	discordTokenURL  = "https://discord.com/api/oauth2/token"
	discordUserURL   = "https://discord.com/api/users/@me"
	discordGuildsURL = "https://discord.com/api/users/@me/guilds"
	discordScopes    = "identify guilds"
	httpCallTimeout  = 10 * time.Second
)

// Discord permission bits relevant to the panel.
const (
	permAdministrator = 1 << 3
	permManageGuild   = 1 << 5
)

// discordOAuthClient handles the Discord OAuth flow and the identity calls
// the panel needs.
type discordOAuthClient interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauthTokenResult, error)
	FetchUser(ctx context.Context, accessToken string) (*discordUser, error)
	FetchGuilds(ctx context.Context, accessToken string) ([]discordGuild, error)
}

type oauthTokenResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type discordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

type discordGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}

// canManage reports whether the user may administer the guild: owners and
// holders of Manage Guild or Administrator.
func (g discordGuild) canManage() bool {
	if g.Owner {
		return true
	}
	perms, err := strconv.ParseInt(g.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return perms&(permManageGuild|permAdministrator) != 0
}

// discordOAuthHTTPClient is the production implementation using Discord's
// HTTP APIs.
type discordOAuthHTTPClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	http         *http.Client
}

func newDiscordOAuthClient(clientID, clientSecret, redirectURI string) *discordOAuthHTTPClient {
	return &discordOAuthHTTPClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		http:         &http.Client{Timeout: httpCallTimeout},
	}
}

func (c *discordOAuthHTTPClient) AuthorizeURL(state string) string {
	return fmt.Sprintf(
		"%s?client_id=%s&redirect_uri=%s&response_type=code&scope=%s&state=%s",
		discordAuthURL,
		url.QueryEscape(c.clientID),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(discordScopes),
		url.QueryEscape(state),
	)
}

func (c *discordOAuthHTTPClient) ExchangeCode(ctx context.Context, code string) (*oauthTokenResult, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, discordTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &oauthTokenResult{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
	}, nil
}

func (c *discordOAuthHTTPClient) FetchUser(ctx context.Context, accessToken string) (*discordUser, error) {
	var user discordUser
	if err := c.getJSON(ctx, discordUserURL, accessToken, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("no user data returned")
	}
	return &user, nil
}

func (c *discordOAuthHTTPClient) FetchGuilds(ctx context.Context, accessToken string) ([]discordGuild, error) {
	var guilds []discordGuild
	if err := c.getJSON(ctx, discordGuildsURL, accessToken, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

func (c *discordOAuthHTTPClient) getJSON(ctx context.Context, rawURL, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
