package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	tokenPrefix = "oauth_token:"
	tokenTTL    = 10 * time.Minute
)

// ErrTokenNotFound is returned when no token is cached for a session.
var ErrTokenNotFound = errors.New("oauth token not found")

// OAuthToken is a Discord OAuth access token cached per panel session.
type OAuthToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenStore keeps short-lived OAuth tokens in Redis keyed by session id,
// so panel workers can call the Discord API without re-prompting the user.
type TokenStore struct {
	rdb goredis.Cmdable
}

func NewTokenStore(rdb goredis.Cmdable) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func (s *TokenStore) Put(ctx context.Context, sessionID string, token OAuthToken) error {
	encoded, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal oauth token: %w", err)
	}
	if err := s.rdb.Set(ctx, tokenPrefix+sessionID, encoded, tokenTTL).Err(); err != nil {
		return fmt.Errorf("failed to store oauth token: %w", err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, sessionID string) (OAuthToken, error) {
	data, err := s.rdb.Get(ctx, tokenPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return OAuthToken{}, ErrTokenNotFound
	}
	if err != nil {
		return OAuthToken{}, fmt.Errorf("failed to fetch oauth token: %w", err)
	}

	var token OAuthToken
	if err := json.Unmarshal(data, &token); err != nil {
		return OAuthToken{}, fmt.Errorf("failed to unmarshal oauth token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, tokenPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete oauth token: %w", err)
	}
	return nil
}
