package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loefbijter/loefsys/internal/domain"
	appctx "github.com/loefbijter/loefsys/internal/pkg/context"
)

type MembershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) *MembershipRepo { return &MembershipRepo{pool: pool} }

// Create inserts a membership period after checking it against the contact's
// existing periods. The contacts row is locked first so two concurrent inserts
// for the same contact cannot both pass the overlap check.
func (r *MembershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var contactID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT id FROM contacts WHERE id = $1 FOR UPDATE`, m.ContactID).Scan(&contactID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.ErrContactNotFound
			}
			return err
		}

		existing, err := listMemberships(ctx, tx, m.ContactID)
		if err != nil {
			return err
		}
		intervals := make([]domain.Interval, 0, len(existing))
		for i := range existing {
			intervals = append(intervals, existing[i].Interval())
		}
		if domain.Overlaps(m.Interval(), intervals) {
			return domain.ErrMembershipOverlap
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO memberships (id, contact_id, type, since, until, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, m.ID, m.ContactID, string(m.Type), m.Since, m.Until, m.Created)
		if err != nil {
			return err
		}

		return insertOutbox(ctx, tx, appctx.GetRequestID(ctx), rkMembershipStarted, map[string]any{
			"membership_id": m.ID,
			"contact_id":    m.ContactID,
			"type":          string(m.Type),
			"since":         m.Since,
		})
	})
}

func (r *MembershipRepo) ListByContact(ctx context.Context, contactID uuid.UUID) ([]domain.Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, contact_id, type, since, until, created_at
		FROM memberships
		WHERE contact_id = $1
		ORDER BY since ASC
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func listMemberships(ctx context.Context, tx pgx.Tx, contactID uuid.UUID) ([]domain.Membership, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, contact_id, type, since, until, created_at
		FROM memberships
		WHERE contact_id = $1
		ORDER BY since ASC
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func collectMemberships(rows pgx.Rows) ([]domain.Membership, error) {
	var out []domain.Membership
	for rows.Next() {
		var m domain.Membership
		var typ string
		err := rows.Scan(&m.ID, &m.ContactID, &typ, &m.Since, &m.Until, &m.Created)
		if err != nil {
			return nil, err
		}
		m.Type = domain.MembershipType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

// End closes an ongoing membership. Ended memberships are immutable.
func (r *MembershipRepo) End(ctx context.Context, id uuid.UUID, until time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE memberships SET until = $2
		WHERE id = $1 AND until IS NULL AND since <= $2
	`, id, until)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrValidationMeta("membership is not ongoing or until precedes since", map[string]string{
			"membership_id": id.String(),
		})
	}
	return nil
}
