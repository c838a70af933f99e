package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"wanderlust/internal/domains/user"
	"wanderlust/pkg/cache"
)

const (
	uniqueViolation = "23505"
	userCacheTTL    = 15 * time.Minute
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) user.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID is read on every authenticated request, so it goes through the
// cache first. The cached copy carries no password hash.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u user.User
	found, err := r.cache.Get(ctx, cacheKey(id), &u)
	if err == nil && found {
		return &u, nil
	}

	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &u); err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey(id), &u, userCacheTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("cache user failed")
	}
	return &u, nil
}

func (r *postgresRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`
	var u user.User
	if err := scanUser(r.pool.QueryRow(ctx, query, username), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUser(row pgx.Row, u *user.User) error {
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("scan user: %w", err)
	}
	return nil
}
