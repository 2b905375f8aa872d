package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/domain"
)

type TwitchFollowRepo struct {
	pool *pgxpool.Pool
}

func NewTwitchFollowRepo(pool *pgxpool.Pool) *TwitchFollowRepo {
	return &TwitchFollowRepo{pool: pool}
}

const twitchFollowColumns = `id, login, guild_id, channel_id, role_id, live,
	last_started_at, last_message_id, peak_viewers, last_game_id, last_game_name,
	last_box_art_url, last_display_name, last_stream_title, last_user_id,
	profile_image_url, created_at, updated_at`

func scanTwitchFollow(row pgx.Row) (*domain.TwitchFollow, error) {
	var f domain.TwitchFollow
	err := row.Scan(&f.ID, &f.Login, &f.GuildID, &f.ChannelID, &f.RoleID, &f.Live,
		&f.LastStartedAt, &f.LastMessageID, &f.PeakViewers, &f.LastGameID, &f.LastGameName,
		&f.LastBoxArtURL, &f.LastDisplayName, &f.LastStreamTitle, &f.LastUserID,
		&f.ProfileImageURL, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFollowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan twitch follow: %w", err)
	}
	return &f, nil
}

func (r *TwitchFollowRepo) Add(ctx context.Context, login, guildID, channelID, roleID string) (*domain.TwitchFollow, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO twitch_follows (login, guild_id, channel_id, role_id)
		VALUES (lower($1), $2, $3, $4)
		RETURNING `+twitchFollowColumns,
		login, guildID, channelID, roleID)

	f, err := scanTwitchFollow(row)
	if isUniqueViolation(err) {
		return nil, domain.ErrFollowExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add twitch follow: %w", err)
	}
	return f, nil
}

// Remove deletes every follow of the login in the guild, across all
// announcement channels, and reports how many rows went away.
func (r *TwitchFollowRepo) Remove(ctx context.Context, login, guildID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM twitch_follows WHERE login = lower($1) AND guild_id = $2",
		login, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove twitch follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, domain.ErrFollowNotFound
	}
	return tag.RowsAffected(), nil
}

// Get returns the oldest follow of the login in the guild. A login can
// be followed into several channels; the oldest one is the stable pick
// for the test commands.
func (r *TwitchFollowRepo) Get(ctx context.Context, login, guildID string) (*domain.TwitchFollow, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+twitchFollowColumns+" FROM twitch_follows WHERE login = lower($1) AND guild_id = $2 ORDER BY id LIMIT 1",
		login, guildID)
	return scanTwitchFollow(row)
}

func (r *TwitchFollowRepo) ListByGuild(ctx context.Context, guildID string) ([]domain.TwitchFollow, error) {
	return r.list(ctx, "SELECT "+twitchFollowColumns+" FROM twitch_follows WHERE guild_id = $1 ORDER BY login", guildID)
}

func (r *TwitchFollowRepo) ListAll(ctx context.Context) ([]domain.TwitchFollow, error) {
	return r.list(ctx, "SELECT " + twitchFollowColumns + " FROM twitch_follows ORDER BY login")
}

func (r *TwitchFollowRepo) list(ctx context.Context, query string, args ...any) ([]domain.TwitchFollow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list twitch follows: %w", err)
	}
	defer rows.Close()

	var follows []domain.TwitchFollow
	for rows.Next() {
		f, err := scanTwitchFollow(rows)
		if err != nil {
			return nil, err
		}
		follows = append(follows, *f)
	}
	return follows, rows.Err()
}

// UpdateState persists the announcement state after a poll cycle.
func (r *TwitchFollowRepo) UpdateState(ctx context.Context, f *domain.TwitchFollow) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE twitch_follows SET
			live = $2, last_started_at = $3, last_message_id = $4, peak_viewers = $5,
			last_game_id = $6, last_game_name = $7, last_box_art_url = $8,
			last_display_name = $9, last_stream_title = $10, last_user_id = $11,
			profile_image_url = $12, updated_at = now()
		WHERE id = $1`,
		f.ID, f.Live, f.LastStartedAt, f.LastMessageID, f.PeakViewers,
		f.LastGameID, f.LastGameName, f.LastBoxArtURL,
		f.LastDisplayName, f.LastStreamTitle, f.LastUserID,
		f.ProfileImageURL)
	if err != nil {
		return fmt.Errorf("failed to update twitch follow state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFollowNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "23505")
}
