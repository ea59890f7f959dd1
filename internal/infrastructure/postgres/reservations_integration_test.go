//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/infrastructure/postgres"
)

func seedItem(t *testing.T, repo *postgres.ReservationRepo, category domain.ReservableCategory, required *uuid.UUID) *domain.ReservableItem {
	t.Helper()
	it, err := domain.NewReservableItem("Item "+uuid.NewString()[:8], category, "", "Harbor", time.Now())
	require.NoError(t, err)
	it.RequiredSkippershipID = required
	require.NoError(t, repo.CreateItem(context.Background(), it))
	return it
}

func TestCreateReservation_OverlapRejected(t *testing.T) {
	pool := setupPool(t)
	repo := postgres.NewReservationRepo(pool)
	ctx := context.Background()

	it := seedItem(t, repo, domain.ReservableRoom, nil)
	contactA := seedContact(t, pool)
	contactB := seedContact(t, pool)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(4 * time.Hour)

	first, err := domain.NewReservation(it.ID, contactA, start, end, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.CreateReservation(ctx, "t", first))

	// overlapping claim fails
	overlapping, err := domain.NewReservation(it.ID, contactB, start.Add(time.Hour), end.Add(time.Hour), nil, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, repo.CreateReservation(ctx, "t", overlapping), domain.ErrReservationConflict)

	// back-to-back is fine: end is exclusive
	adjacent, err := domain.NewReservation(it.ID, contactB, end, end.Add(2*time.Hour), nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.CreateReservation(ctx, "t", adjacent))
}

func TestCreateReservation_SkippershipEnforced(t *testing.T) {
	pool := setupPool(t)
	repo := postgres.NewReservationRepo(pool)
	ctx := context.Background()

	sk := &domain.Skippership{ID: uuid.New(), Name: "Skipper " + uuid.NewString()[:8]}
	require.NoError(t, repo.CreateSkippership(ctx, sk))

	it := seedItem(t, repo, domain.ReservableBoat, &sk.ID)
	skipper := seedContact(t, pool)
	other := seedContact(t, pool)

	grant := &domain.UserSkippership{ID: uuid.New(), ContactID: skipper, SkippershipID: sk.ID, Since: time.Now().UTC()}
	require.NoError(t, repo.GrantSkippership(ctx, grant))

	start := time.Now().UTC().Add(24 * time.Hour)
	end := start.Add(6 * time.Hour)

	// without a grant reference the boat is off limits
	unauthorized, err := domain.NewReservation(it.ID, other, start, end, nil, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, repo.CreateReservation(ctx, "t", unauthorized), domain.ErrSkipperRequired)

	// someone else's grant does not count
	borrowed, err := domain.NewReservation(it.ID, other, start, end, &grant.ID, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, repo.CreateReservation(ctx, "t", borrowed), domain.ErrSkipperNotAuthorized)

	// the holder passes
	authorized, err := domain.NewReservation(it.ID, skipper, start, end, &grant.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.CreateReservation(ctx, "t", authorized))
}

func TestCreateReservation_UnreservableItem(t *testing.T) {
	pool := setupPool(t)
	repo := postgres.NewReservationRepo(pool)
	ctx := context.Background()

	it := seedItem(t, repo, domain.ReservableMaterial, nil)
	it.IsReservable = false
	it.Updated = time.Now().UTC()
	require.NoError(t, repo.UpdateItem(ctx, it))

	start := time.Now().UTC().Add(24 * time.Hour)
	res, err := domain.NewReservation(it.ID, seedContact(t, pool), start, start.Add(time.Hour), nil, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, repo.CreateReservation(ctx, "t", res), domain.ErrItemUnavailable)
}
