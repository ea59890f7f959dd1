//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/infrastructure/postgres"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))
	t.Cleanup(pool.Close)

	WipeDB(t, pool)
	ApplyMigrations(t, pool, "../../../migrations")
	return pool
}

func WipeDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
		DO $$
		DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`)
	if err != nil {
		t.Fatalf("wipe db: %v", err)
	}
}

func ApplyMigrations(t *testing.T, pool *pgxpool.Pool, migrationsDir string) {
	t.Helper()
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir %q: %v", migrationsDir, err)
	}

	var files []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		t.Fatalf("no migration files found in %q", migrationsDir)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(migrationsDir, f.Name()))
		if err != nil {
			t.Fatalf("read migration %s: %v", f.Name(), err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func seedContact(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	c, err := domain.NewContact(uuid.NewString()+"@loefbijter.nl", "Test", "Member", "", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, postgres.NewContactRepo(pool).Create(context.Background(), c))
	return c.ID
}

// seedEvent creates a published event with an open registration window and the
// given capacity (nil = unlimited).
func seedEvent(t *testing.T, pool *pgxpool.Pool, capacity *int, fineCents int64) *domain.Event {
	t.Helper()
	organizer := seedContact(t, pool)

	now := time.Now().UTC()
	start := now.Add(14 * 24 * time.Hour)
	ev, err := domain.NewEvent(organizer, "Test Event "+uuid.NewString()[:8], "", "Bastion", domain.CategorySailing, start, start.Add(6*time.Hour), now)
	require.NoError(t, err)

	regStart := now.Add(-time.Hour)
	regDeadline := start.Add(-24 * time.Hour)
	ev.RegistrationStart = &regStart
	ev.RegistrationDeadline = &regDeadline
	ev.Capacity = capacity
	ev.FineCents = fineCents
	ev.Published = true
	require.NoError(t, ev.Validate())

	require.NoError(t, postgres.NewEventRepo(pool).Create(context.Background(), ev))
	return ev
}
