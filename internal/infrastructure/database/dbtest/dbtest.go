// Package dbtest opens a migrated PostgreSQL pool for repository tests.
// Tests skip unless WANDERLUST_TEST_DATABASE_URL is set. Packages share the
// database, so run them with go test -p 1.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/infrastructure/database"
)

const envURL = "WANDERLUST_TEST_DATABASE_URL"

// Open connects to the test database, applies migrations and empties every
// table. The pool is closed when the test ends.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(envURL)
	if dsn == "" {
		t.Skip(envURL + " not set, skipping PostgreSQL test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := &database.PostgresDB{Pool: pool}
	require.NoError(t, db.Migrate(ctx))

	_, err = pool.Exec(ctx, `TRUNCATE reviews, listings, users CASCADE`)
	require.NoError(t, err)
	return pool
}

// InsertUser adds a bare user row for foreign keys to point at.
func InsertUser(t testing.TB, pool *pgxpool.Pool, id uuid.UUID, username string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, 'x')`,
		id, username, username+"@example.com",
	)
	require.NoError(t, err)
}
