package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/domain"
)

type YouTubeFollowRepo struct {
	pool *pgxpool.Pool
}

func NewYouTubeFollowRepo(pool *pgxpool.Pool) *YouTubeFollowRepo {
	return &YouTubeFollowRepo{pool: pool}
}

const youtubeFollowColumns = `id, channel_id, channel_title, channel_handle, uploads_playlist_id,
	guild_id, announce_channel_id, role_id, last_video_id, last_video_published_at,
	last_message_id, channel_thumb_url, created_at, updated_at`

func scanYouTubeFollow(row pgx.Row) (*domain.YouTubeFollow, error) {
	var f domain.YouTubeFollow
	err := row.Scan(&f.ID, &f.ChannelID, &f.ChannelTitle, &f.ChannelHandle, &f.UploadsPlaylistID,
		&f.GuildID, &f.AnnounceChannelID, &f.RoleID, &f.LastVideoID, &f.LastVideoPublishedAt,
		&f.LastMessageID, &f.ChannelThumbURL, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFollowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan youtube follow: %w", err)
	}
	return &f, nil
}

func (r *YouTubeFollowRepo) Add(ctx context.Context, f *domain.YouTubeFollow) (*domain.YouTubeFollow, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO youtube_follows
			(channel_id, channel_title, channel_handle, uploads_playlist_id,
			 guild_id, announce_channel_id, role_id, channel_thumb_url,
			 last_video_id, last_video_published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+youtubeFollowColumns,
		f.ChannelID, f.ChannelTitle, f.ChannelHandle, f.UploadsPlaylistID,
		f.GuildID, f.AnnounceChannelID, f.RoleID, f.ChannelThumbURL,
		f.LastVideoID, f.LastVideoPublishedAt)

	created, err := scanYouTubeFollow(row)
	if isUniqueViolation(err) {
		return nil, domain.ErrFollowExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add youtube follow: %w", err)
	}
	return created, nil
}

// Remove deletes every follow of the channel in the guild, across all
// announcement channels, and reports how many rows went away.
func (r *YouTubeFollowRepo) Remove(ctx context.Context, channelID, guildID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM youtube_follows WHERE channel_id = $1 AND guild_id = $2",
		channelID, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove youtube follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, domain.ErrFollowNotFound
	}
	return tag.RowsAffected(), nil
}

func (r *YouTubeFollowRepo) ListByGuild(ctx context.Context, guildID string) ([]domain.YouTubeFollow, error) {
	return r.list(ctx,
		"SELECT "+youtubeFollowColumns+" FROM youtube_follows WHERE guild_id = $1 ORDER BY channel_title",
		guildID)
}

func (r *YouTubeFollowRepo) ListAll(ctx context.Context) ([]domain.YouTubeFollow, error) {
	return r.list(ctx, "SELECT " + youtubeFollowColumns + " FROM youtube_follows ORDER BY channel_title")
}

func (r *YouTubeFollowRepo) list(ctx context.Context, query string, args ...any) ([]domain.YouTubeFollow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list youtube follows: %w", err)
	}
	defer rows.Close()

	var follows []domain.YouTubeFollow
	for rows.Next() {
		f, err := scanYouTubeFollow(rows)
		if err != nil {
			return nil, err
		}
		follows = append(follows, *f)
	}
	return follows, rows.Err()
}

// UpdateState persists the last announced video after a poll cycle.
func (r *YouTubeFollowRepo) UpdateState(ctx context.Context, f *domain.YouTubeFollow) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE youtube_follows SET
			last_video_id = $2, last_video_published_at = $3, last_message_id = $4,
			channel_title = $5, channel_thumb_url = $6, updated_at = now()
		WHERE id = $1`,
		f.ID, f.LastVideoID, f.LastVideoPublishedAt, f.LastMessageID,
		f.ChannelTitle, f.ChannelThumbURL)
	if err != nil {
		return fmt.Errorf("failed to update youtube follow state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFollowNotFound
	}
	return nil
}
