package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, guildID, userID int64, action string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		"INSERT INTO audit_log (guild_id, user_id, action, payload) VALUES ($1, $2, $3, $4)",
		guildID, userID, action, raw)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListByGuild(ctx context.Context, guildID int64, limit int) ([]domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, guild_id, user_id, action, payload, created_at
		FROM audit_log WHERE guild_id = $1
		ORDER BY created_at DESC LIMIT $2`, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var raw []byte
		if err := rows.Scan(&e.ID, &e.GuildID, &e.UserID, &e.Action, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit payload: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
