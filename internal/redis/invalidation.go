package redis

import (
	"context"
	"fmt"
	"log/slog"
)

// featureFlagChannel carries pub/sub notifications when the panel changes a
// guild's feature flags, so the bot refreshes its in-memory cache promptly.
const featureFlagChannel = "feature_flags:invalidate"

// PublishFeatureFlagInvalidation notifies subscribers that the flags of the
// given guild (Discord id) changed. An empty guild id means "refresh all".
func (c *Client) PublishFeatureFlagInvalidation(ctx context.Context, guildDiscordID string) error {
	if err := c.rdb.Publish(ctx, featureFlagChannel, guildDiscordID).Err(); err != nil {
		return fmt.Errorf("failed to publish feature flag invalidation: %w", err)
	}
	return nil
}

// SubscribeFeatureFlagInvalidations calls handle for every invalidation
// message until ctx is canceled.
func (c *Client) SubscribeFeatureFlagInvalidations(ctx context.Context, handle func(guildDiscordID string)) {
	sub := c.rdb.Subscribe(ctx, featureFlagChannel)
	defer func() {
		if err := sub.Close(); err != nil {
			slog.Warn("failed to close feature flag subscription", "error", err)
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			handle(msg.Payload)
		}
	}
}
