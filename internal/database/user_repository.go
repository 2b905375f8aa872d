package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = "id, discord_id, username, display_name, avatar, is_site_admin, created_at, last_login"

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.DiscordID, &u.Username, &u.DisplayName, &u.Avatar, &u.IsSiteAdmin, &u.CreatedAt, &u.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (r *UserRepo) GetByDiscordID(ctx context.Context, discordID string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE discord_id = $1", discordID)
	return scanUser(row)
}

// Upsert creates or refreshes a user from a Discord OAuth login and stamps
// last_login.
func (r *UserRepo) Upsert(ctx context.Context, discordID, username, displayName, avatar string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (discord_id, username, display_name, avatar, last_login)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (discord_id) DO UPDATE
		SET username = EXCLUDED.username,
		    display_name = EXCLUDED.display_name,
		    avatar = EXCLUDED.avatar,
		    last_login = now()
		RETURNING `+userColumns,
		discordID, username, displayName, avatar)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) SetSiteAdmin(ctx context.Context, id int64, admin bool) error {
	tag, err := r.pool.Exec(ctx, "UPDATE users SET is_site_admin = $2 WHERE id = $1", id, admin)
	if err != nil {
		return fmt.Errorf("failed to update site admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
