package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/domain"
)

type PremiumRepo struct {
	pool *pgxpool.Pool
}

func NewPremiumRepo(pool *pgxpool.Pool) *PremiumRepo {
	return &PremiumRepo{pool: pool}
}

func (r *PremiumRepo) Get(ctx context.Context, guildID int64) (*domain.GuildPremium, error) {
	var p domain.GuildPremium
	err := r.pool.QueryRow(ctx,
		"SELECT id, guild_id, tier, expires_at, granted_by FROM guild_premium WHERE guild_id = $1",
		guildID).Scan(&p.ID, &p.GuildID, &p.Tier, &p.ExpiresAt, &p.GrantedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPremiumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get premium grant: %w", err)
	}
	return &p, nil
}

func (r *PremiumRepo) Grant(ctx context.Context, guildID int64, tier string, expiresAt *time.Time, grantedBy *int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guild_premium (guild_id, tier, expires_at, granted_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id) DO UPDATE
		SET tier = EXCLUDED.tier, expires_at = EXCLUDED.expires_at, granted_by = EXCLUDED.granted_by`,
		guildID, tier, expiresAt, grantedBy)
	if err != nil {
		return fmt.Errorf("failed to grant premium: %w", err)
	}
	return nil
}

func (r *PremiumRepo) Revoke(ctx context.Context, guildID int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM guild_premium WHERE guild_id = $1", guildID)
	if err != nil {
		return fmt.Errorf("failed to revoke premium: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPremiumNotFound
	}
	return nil
}

func (r *PremiumRepo) ListActive(ctx context.Context) ([]domain.PremiumRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gp.guild_id, g.discord_id, g.name, gp.tier, gp.expires_at, COALESCE(u.username, '')
		FROM guild_premium gp
		JOIN guilds g ON g.id = gp.guild_id
		LEFT JOIN users u ON u.id = gp.granted_by
		WHERE gp.expires_at IS NULL OR gp.expires_at > now()
		ORDER BY g.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list premium guilds: %w", err)
	}
	defer rows.Close()

	var out []domain.PremiumRow
	for rows.Next() {
		var p domain.PremiumRow
		if err := rows.Scan(&p.GuildID, &p.GuildDiscordID, &p.GuildName, &p.Tier, &p.ExpiresAt, &p.GrantedBy); err != nil {
			return nil, fmt.Errorf("failed to scan premium row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ActiveByDiscordID reports whether the guild with the given Discord id has
// an unexpired premium grant.
func (r *PremiumRepo) ActiveByDiscordID(ctx context.Context, guildDiscordID string) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM guild_premium gp
			JOIN guilds g ON g.id = gp.guild_id
			WHERE g.discord_id = $1 AND (gp.expires_at IS NULL OR gp.expires_at > now())
		)`, guildDiscordID).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("failed to check premium status: %w", err)
	}
	return active, nil
}
