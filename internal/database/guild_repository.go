package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/domain"
)

type GuildRepo struct {
	pool *pgxpool.Pool
}

func NewGuildRepo(pool *pgxpool.Pool) *GuildRepo {
	return &GuildRepo{pool: pool}
}

func scanGuild(row pgx.Row) (*domain.Guild, error) {
	var g domain.Guild
	err := row.Scan(&g.ID, &g.DiscordID, &g.Name, &g.Icon)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGuildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan guild: %w", err)
	}
	return &g, nil
}

func (r *GuildRepo) GetByID(ctx context.Context, id int64) (*domain.Guild, error) {
	row := r.pool.QueryRow(ctx, "SELECT id, discord_id, name, icon FROM guilds WHERE id = $1", id)
	return scanGuild(row)
}

func (r *GuildRepo) GetByDiscordID(ctx context.Context, discordID string) (*domain.Guild, error) {
	row := r.pool.QueryRow(ctx, "SELECT id, discord_id, name, icon FROM guilds WHERE discord_id = $1", discordID)
	return scanGuild(row)
}

func (r *GuildRepo) Upsert(ctx context.Context, discordID, name, icon string) (*domain.Guild, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO guilds (discord_id, name, icon)
		VALUES ($1, $2, $3)
		ON CONFLICT (discord_id) DO UPDATE
		SET name = EXCLUDED.name, icon = EXCLUDED.icon
		RETURNING id, discord_id, name, icon`,
		discordID, name, icon)

	g, err := scanGuild(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert guild: %w", err)
	}
	return g, nil
}

// UpsertMember records membership and role for a user in a guild.
func (r *GuildRepo) UpsertMember(ctx context.Context, userID, guildID int64, role string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guild_members (user_id, guild_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET role = EXCLUDED.role`,
		userID, guildID, role)
	if err != nil {
		return fmt.Errorf("failed to upsert guild member: %w", err)
	}
	return nil
}

func (r *GuildRepo) GetMember(ctx context.Context, userID, guildID int64) (*domain.GuildMember, error) {
	var m domain.GuildMember
	err := r.pool.QueryRow(ctx,
		"SELECT id, user_id, guild_id, role FROM guild_members WHERE user_id = $1 AND guild_id = $2",
		userID, guildID).Scan(&m.ID, &m.UserID, &m.GuildID, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild member: %w", err)
	}
	return &m, nil
}

func (r *GuildRepo) GetSetting(ctx context.Context, guildID int64, key string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		"SELECT value FROM guild_settings WHERE guild_id = $1 AND key = $2",
		guildID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get guild setting: %w", err)
	}
	return value, nil
}

func (r *GuildRepo) ListSettings(ctx context.Context, guildID int64) ([]domain.GuildSetting, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, guild_id, key, value FROM guild_settings WHERE guild_id = $1 ORDER BY key",
		guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild settings: %w", err)
	}
	defer rows.Close()

	var settings []domain.GuildSetting
	for rows.Next() {
		var s domain.GuildSetting
		if err := rows.Scan(&s.ID, &s.GuildID, &s.Key, &s.Value); err != nil {
			return nil, fmt.Errorf("failed to scan guild setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *GuildRepo) SetSetting(ctx context.Context, guildID int64, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guild_settings (guild_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, key) DO UPDATE SET value = EXCLUDED.value`,
		guildID, key, value)
	if err != nil {
		return fmt.Errorf("failed to set guild setting: %w", err)
	}
	return nil
}
