//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loefbijter/loefsys/internal/domain"
	"github.com/loefbijter/loefsys/internal/infrastructure/postgres"
)

func TestMembershipCreate_OverlapRejected(t *testing.T) {
	pool := setupPool(t)
	repo := postgres.NewMembershipRepo(pool)
	ctx := context.Background()

	contactID := seedContact(t, pool)
	now := time.Now().UTC()

	since := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	first, err := domain.NewMembership(contactID, domain.MembershipActive, since, &until, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	// overlapping period is rejected
	overlapping, err := domain.NewMembership(contactID, domain.MembershipPassive,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), nil, now)
	require.NoError(t, err)
	require.ErrorIs(t, repo.Create(ctx, overlapping), domain.ErrMembershipOverlap)

	// back-to-back is allowed: until is exclusive
	next, err := domain.NewMembership(contactID, domain.MembershipAlumnus, until, nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, next))

	ms, err := repo.ListByContact(ctx, contactID)
	require.NoError(t, err)
	require.Len(t, ms, 2)
}

func TestMembershipEnd_OngoingOnly(t *testing.T) {
	pool := setupPool(t)
	repo := postgres.NewMembershipRepo(pool)
	ctx := context.Background()

	contactID := seedContact(t, pool)
	since := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	m, err := domain.NewMembership(contactID, domain.MembershipActive, since, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, m))

	until := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.End(ctx, m.ID, until))

	// already ended
	var ve *domain.ValidationError
	require.ErrorAs(t, repo.End(ctx, m.ID, until.AddDate(1, 0, 0)), &ve)
}
