package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/domain"
)

type FeatureRepo struct {
	pool *pgxpool.Pool
}

func NewFeatureRepo(pool *pgxpool.Pool) *FeatureRepo {
	return &FeatureRepo{pool: pool}
}

func (r *FeatureRepo) List(ctx context.Context) ([]domain.Feature, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, key, name, description FROM features ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var features []domain.Feature
	for rows.Next() {
		var f domain.Feature
		if err := rows.Scan(&f.ID, &f.Key, &f.Name, &f.Description); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// Seed inserts the built-in features if missing, leaving existing rows alone.
func (r *FeatureRepo) Seed(ctx context.Context, features []domain.Feature) error {
	for _, f := range features {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO features (key, name, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO NOTHING`,
			f.Key, f.Name, f.Description)
		if err != nil {
			return fmt.Errorf("failed to seed feature %q: %w", f.Key, err)
		}
	}
	return nil
}

func (r *FeatureRepo) ListFlags(ctx context.Context, guildID int64) ([]domain.GuildFeatureFlag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, guild_id, feature_id, enabled, updated_by, updated_at
		FROM guild_feature_flags WHERE guild_id = $1`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature flags: %w", err)
	}
	defer rows.Close()

	var flags []domain.GuildFeatureFlag
	for rows.Next() {
		var f domain.GuildFeatureFlag
		if err := rows.Scan(&f.ID, &f.GuildID, &f.FeatureID, &f.Enabled, &f.UpdatedBy, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feature flag: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

func (r *FeatureRepo) SetFlag(ctx context.Context, guildID, featureID int64, enabled bool, updatedBy *int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guild_feature_flags (guild_id, feature_id, enabled, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (guild_id, feature_id) DO UPDATE
		SET enabled = EXCLUDED.enabled, updated_by = EXCLUDED.updated_by, updated_at = now()`,
		guildID, featureID, enabled, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set feature flag: %w", err)
	}
	return nil
}

// EnabledByGuild returns the enabled feature keys indexed by the guild's
// Discord id. Flags stored without a guild apply globally and come back
// under the empty key.
func (r *FeatureRepo) EnabledByGuild(ctx context.Context) (map[string]map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(g.discord_id, ''), f.key
		FROM guild_feature_flags gff
		LEFT JOIN guilds g ON g.id = gff.guild_id
		JOIN features f ON f.id = gff.feature_id
		WHERE gff.enabled`)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled flags: %w", err)
	}
	defer rows.Close()

	enabled := make(map[string]map[string]bool)
	for rows.Next() {
		var guildDiscordID, key string
		if err := rows.Scan(&guildDiscordID, &key); err != nil {
			return nil, fmt.Errorf("failed to scan enabled flag: %w", err)
		}
		if enabled[guildDiscordID] == nil {
			enabled[guildDiscordID] = make(map[string]bool)
		}
		enabled[guildDiscordID][key] = true
	}
	return enabled, rows.Err()
}
