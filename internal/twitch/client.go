// Package twitch polls the Helix API for live status of followed channels.
package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nicklaw5/helix/v2"
	"golang.org/x/sync/singleflight"

	"github.com/elisa-renault/Galactia/internal/metrics"
	"github.com/elisa-renault/Galactia/internal/retry"
)

const (
	streamsBatchSize = 100
	// tokenSafetyMargin renews the app token this long before it expires.
	tokenSafetyMargin = 60 * time.Second
)

// Stream is a live Helix stream reduced to what the notifier needs.
type Stream struct {
	UserLogin    string
	UserName     string
	Title        string
	GameID       string
	GameName     string
	ViewerCount  int
	ThumbnailURL string
	StartedAt    time.Time
}

// User is a Helix user reduced to what the notifier needs.
type User struct {
	ID              string
	DisplayName     string
	ProfileImageURL string
}

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("helix status %d: %s", e.status, e.message)
}

// Client wraps a helix client with app-token management. The token is
// renewed lazily, deduplicated through singleflight when concurrent calls
// find it expired.
type Client struct {
	mu          sync.Mutex
	hx          *helix.Client
	clock       clockwork.Clock
	tokenExpiry time.Time
	sf          singleflight.Group
	retries     retry.Options
}

func NewClient(clientID, clientSecret string, clock clockwork.Clock) (*Client, error) {
	hx, err := helix.NewClient(&helix.Options{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}

	return &Client{
		hx:    hx,
		clock: clock,
		retries: retry.Options{
			Attempts: 3,
			Wait:     500 * time.Millisecond,
			Throttle: 5 * time.Second,
			OnWait: func(attempt int, wait time.Duration, err error) {
				slog.Warn("retrying helix call", "attempt", attempt, "wait", wait, "error", err)
			},
		},
	}, nil
}

func classifyAPIError(err error) retry.Verdict {
	if apiErr, ok := err.(*apiError); ok {
		switch {
		case apiErr.status == 429:
			return retry.Throttled
		case apiErr.status >= 500:
			return retry.Backoff
		default:
			return retry.Abort
		}
	}
	// Network-level failure, worth another try.
	return retry.Backoff
}

func (c *Client) ensureAppToken(ctx context.Context) error {
	c.mu.Lock()
	valid := c.clock.Now().Before(c.tokenExpiry.Add(-tokenSafetyMargin))
	c.mu.Unlock()
	if valid {
		return nil
	}

	_, err, _ := c.sf.Do("app_token", func() (any, error) {
		resp, err := c.hx.RequestAppAccessToken(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to request app access token: %w", err)
		}
		if resp.StatusCode != 200 {
			return nil, &apiError{status: resp.StatusCode, message: resp.ErrorMessage}
		}

		c.mu.Lock()
		c.hx.SetAppAccessToken(resp.Data.AccessToken)
		c.tokenExpiry = c.clock.Now().Add(time.Duration(resp.Data.ExpiresIn) * time.Second)
		c.mu.Unlock()

		slog.Debug("twitch app token refreshed", "expires_in", resp.Data.ExpiresIn)
		return nil, nil
	})
	if err != nil {
		metrics.ExternalAPIErrors.WithLabelValues("twitch").Inc()
	}
	return err
}

// StreamsByLogins returns the currently live streams among the given
// logins, batched per the Helix limit of 100 logins per request.
func (c *Client) StreamsByLogins(ctx context.Context, logins []string) ([]Stream, error) {
	if len(logins) == 0 {
		return nil, nil
	}
	if err := c.ensureAppToken(ctx); err != nil {
		return nil, err
	}

	var out []Stream
	for i := 0; i < len(logins); i += streamsBatchSize {
		end := i + streamsBatchSize
		if end > len(logins) {
			end = len(logins)
		}
		chunk := logins[i:end]

		streams, err := retry.Do(ctx, c.retries, classifyAPIError, func() ([]helix.Stream, error) {
			resp, err := c.hx.GetStreams(&helix.StreamsParams{UserLogins: chunk})
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != 200 {
				return nil, &apiError{status: resp.StatusCode, message: resp.ErrorMessage}
			}
			return resp.Data.Streams, nil
		})
		if err != nil {
			metrics.ExternalAPIErrors.WithLabelValues("twitch").Inc()
			return nil, fmt.Errorf("failed to fetch streams: %w", err)
		}

		for _, s := range streams {
			out = append(out, Stream{
				UserLogin:    s.UserLogin,
				UserName:     s.UserName,
				Title:        s.Title,
				GameID:       s.GameID,
				GameName:     s.GameName,
				ViewerCount:  s.ViewerCount,
				ThumbnailURL: s.ThumbnailURL,
				StartedAt:    s.StartedAt,
			})
		}
	}
	return out, nil
}

// UserByLogin resolves a login to its user id, display name, and avatar.
// Returns nil when the login does not exist.
func (c *Client) UserByLogin(ctx context.Context, login string) (*User, error) {
	if err := c.ensureAppToken(ctx); err != nil {
		return nil, err
	}

	resp, err := c.hx.GetUsers(&helix.UsersParams{Logins: []string{login}})
	if err != nil {
		metrics.ExternalAPIErrors.WithLabelValues("twitch").Inc()
		return nil, fmt.Errorf("failed to fetch user %q: %w", login, err)
	}
	if resp.StatusCode != 200 {
		return nil, &apiError{status: resp.StatusCode, message: resp.ErrorMessage}
	}
	if len(resp.Data.Users) == 0 {
		return nil, nil
	}

	u := resp.Data.Users[0]
	return &User{ID: u.ID, DisplayName: u.DisplayName, ProfileImageURL: u.ProfileImageURL}, nil
}

// BoxArtURL returns the game's box art URL with {width}x{height}
// placeholders intact, or empty when unknown.
func (c *Client) BoxArtURL(ctx context.Context, gameID string) (string, error) {
	if gameID == "" {
		return "", nil
	}
	if err := c.ensureAppToken(ctx); err != nil {
		return "", err
	}

	resp, err := c.hx.GetGames(&helix.GamesParams{IDs: []string{gameID}})
	if err != nil {
		metrics.ExternalAPIErrors.WithLabelValues("twitch").Inc()
		return "", fmt.Errorf("failed to fetch game %q: %w", gameID, err)
	}
	if resp.StatusCode != 200 {
		return "", &apiError{status: resp.StatusCode, message: resp.ErrorMessage}
	}
	if len(resp.Data.Games) == 0 {
		return "", nil
	}
	return resp.Data.Games[0].BoxArtURL, nil
}

// LatestVODURL picks the most relevant archive VOD for an ended stream:
// the first one created at or after startedAt minus six hours (reruns and
// scheduling drift), otherwise the most recent archive.
func (c *Client) LatestVODURL(ctx context.Context, userID string, startedAt time.Time) (string, error) {
	if userID == "" {
		return "", nil
	}
	if err := c.ensureAppToken(ctx); err != nil {
		return "", err
	}

	resp, err := c.hx.GetVideos(&helix.VideosParams{
		UserID: userID,
		Type:   "archive",
		First:  5,
		Sort:   "time",
	})
	if err != nil {
		metrics.ExternalAPIErrors.WithLabelValues("twitch").Inc()
		return "", fmt.Errorf("failed to fetch videos for %q: %w", userID, err)
	}
	if resp.StatusCode != 200 {
		return "", &apiError{status: resp.StatusCode, message: resp.ErrorMessage}
	}
	vids := resp.Data.Videos
	if len(vids) == 0 {
		return "", nil
	}

	if !startedAt.IsZero() {
		threshold := startedAt.Add(-6 * time.Hour)
		for _, v := range vids {
			created, err := time.Parse(time.RFC3339, v.CreatedAt)
			if err != nil {
				continue
			}
			if !created.Before(threshold) {
				return v.URL, nil
			}
		}
	}
	return vids[0].URL, nil
}
