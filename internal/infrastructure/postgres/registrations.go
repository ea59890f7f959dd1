package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loefbijter/loefsys/internal/domain"
)

// RegistrationRepo owns the registrations ledger. All write paths lock the
// events row first (see lockEvent), then registration rows, so concurrent
// Register/Cancel calls on the same event serialize on one lock and the
// capacity invariant holds without a table constraint.
type RegistrationRepo struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepo(pool *pgxpool.Pool) *RegistrationRepo {
	return &RegistrationRepo{pool: pool}
}

const registrationColumns = `
	id, event_id, contact_id, status,
	price_at_registration_cents, fine_at_registration_cents, paid,
	created_at, cancelled_at`

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	var status string
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.ContactID, &status,
		&reg.PriceAtRegistrationCents, &reg.FineAtRegistrationCents, &reg.Paid,
		&reg.Created, &reg.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Status = domain.RegistrationStatus(status)
	return &reg, nil
}

func (r *RegistrationRepo) Register(ctx context.Context, traceID string, eventID, contactID uuid.UUID, at time.Time) (*domain.Registration, error) {
	var reg *domain.Registration
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		ev, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		// Unpublished folds into "closed": the window is simply not open.
		if !ev.RegistrationsOpenAt(at) {
			return domain.ErrRegistrationClosed
		}

		// One live registration per contact per event. Cancelled rows do not
		// block re-registering; the new row goes through capacity again.
		var liveID int64
		err = tx.QueryRow(ctx, `
			SELECT id FROM registrations
			WHERE event_id = $1 AND contact_id = $2 AND status IN ('active','queued')
		`, eventID, contactID).Scan(&liveID)
		if err == nil {
			return domain.ErrAlreadyRegistered
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		activeCount, err := countByStatus(ctx, tx, eventID, domain.StatusActive)
		if err != nil {
			return err
		}
		status := domain.InitialStatus(ev.Capacity, activeCount)

		reg = &domain.Registration{
			EventID:                  eventID,
			ContactID:                &contactID,
			Status:                   status,
			PriceAtRegistrationCents: ev.PriceCents,
			FineAtRegistrationCents:  ev.FineCents,
		}
		// created_at is assigned by the store inside the locked transaction.
		// NOW() under the event lock plus the bigserial id tiebreak keeps the
		// queue order identical to the order registrations actually landed;
		// the caller's clock only decided the window check above.
		err = tx.QueryRow(ctx, `
			INSERT INTO registrations (
				event_id, contact_id, status,
				price_at_registration_cents, fine_at_registration_cents, paid
			) VALUES ($1, $2, $3, $4, $5, FALSE)
			RETURNING id, created_at
		`, eventID, contactID, string(status), ev.PriceCents, ev.FineCents).Scan(&reg.ID, &reg.Created)
		if err != nil {
			return err
		}

		return insertOutbox(ctx, tx, traceID, rkRegistrationCreated, map[string]any{
			"registration_id": reg.ID,
			"event_id":        eventID,
			"contact_id":      contactID,
			"status":          string(status),
		})
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *RegistrationRepo) Cancel(ctx context.Context, traceID string, registrationID int64, at time.Time, fineConsent bool) (*domain.Registration, error) {
	var reg *domain.Registration
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Resolve the event without locking the registration yet; the event
		// lock always comes first.
		var eventID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT event_id FROM registrations WHERE id = $1`, registrationID).Scan(&eventID)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotRegistered
		}
		if err != nil {
			return err
		}

		ev, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		reg, err = scanRegistration(tx.QueryRow(ctx,
			`SELECT`+registrationColumns+` FROM registrations WHERE id = $1 FOR UPDATE`, registrationID))
		if err != nil {
			return err
		}
		if reg.Status.Terminal() {
			return domain.ErrNotCancellable
		}

		fined := reg.Status == domain.StatusActive && ev.Fined(at)
		if fined && !fineConsent {
			// No mutation: the caller gets the amount back and retries with
			// explicit consent.
			return &domain.FineConsentRequiredError{FineCents: reg.FineAtRegistrationCents}
		}

		wasActive := reg.Status == domain.StatusActive
		newStatus := domain.StatusCancelledNoFine
		if fined {
			newStatus = domain.StatusCancelledFine
		}
		_, err = tx.Exec(ctx, `
			UPDATE registrations SET status = $2, cancelled_at = $3 WHERE id = $1
		`, registrationID, string(newStatus), at)
		if err != nil {
			return err
		}
		reg.Status = newStatus
		cancelled := at
		reg.CancelledAt = &cancelled

		if wasActive {
			if err := promoteQueued(ctx, tx, traceID, ev); err != nil {
				return err
			}
		}

		return insertOutbox(ctx, tx, traceID, rkRegistrationCancelled, map[string]any{
			"registration_id": reg.ID,
			"event_id":        eventID,
			"status":          string(newStatus),
			"fine_cents":      reg.FineAtRegistrationCents,
			"fined":           fined,
		})
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// promoteQueued moves the oldest queued registrations into the slots freed
// under the event lock. FIFO order is creation time with id as tiebreaker.
func promoteQueued(ctx context.Context, tx pgx.Tx, traceID string, ev *domain.Event) error {
	activeCount, err := countByStatus(ctx, tx, ev.ID, domain.StatusActive)
	if err != nil {
		return err
	}
	queuedCount, err := countByStatus(ctx, tx, ev.ID, domain.StatusQueued)
	if err != nil {
		return err
	}
	n := domain.PromotableCount(ev.Capacity, activeCount, queuedCount)
	if n == 0 {
		return nil
	}

	rows, err := tx.Query(ctx, `
		UPDATE registrations SET status = 'active'
		WHERE id IN (
			SELECT id FROM registrations
			WHERE event_id = $1 AND status = 'queued'
			ORDER BY created_at ASC, id ASC
			LIMIT $2
		)
		RETURNING id, contact_id
	`, ev.ID, n)
	if err != nil {
		return err
	}
	type promoted struct {
		id        int64
		contactID *uuid.UUID
	}
	var batch []promoted
	for rows.Next() {
		var p promoted
		if err := rows.Scan(&p.id, &p.contactID); err != nil {
			rows.Close()
			return err
		}
		batch = append(batch, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range batch {
		err := insertOutbox(ctx, tx, traceID, rkRegistrationPromoted, map[string]any{
			"registration_id": p.id,
			"event_id":        ev.ID,
			"contact_id":      p.contactID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func countByStatus(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, status domain.RegistrationStatus) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = $2
	`, eventID, string(status)).Scan(&n)
	return n, err
}

func (r *RegistrationRepo) GetByEventAndContact(ctx context.Context, eventID, contactID uuid.UUID) (*domain.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx, `
		SELECT`+registrationColumns+`
		FROM registrations
		WHERE event_id = $1 AND contact_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, eventID, contactID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotRegistered
	}
	return reg, err
}

func (r *RegistrationRepo) Active(ctx context.Context, eventID uuid.UUID) ([]domain.Registration, error) {
	return r.listByStatus(ctx, eventID, domain.StatusActive)
}

func (r *RegistrationRepo) Queued(ctx context.Context, eventID uuid.UUID) ([]domain.Registration, error) {
	return r.listByStatus(ctx, eventID, domain.StatusQueued)
}

func (r *RegistrationRepo) Cancelled(ctx context.Context, eventID uuid.UUID) ([]domain.Registration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+registrationColumns+`
		FROM registrations
		WHERE event_id = $1 AND status IN ('cancelled_fine','cancelled_nofine')
		ORDER BY created_at ASC, id ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (r *RegistrationRepo) listByStatus(ctx context.Context, eventID uuid.UUID, status domain.RegistrationStatus) ([]domain.Registration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+registrationColumns+`
		FROM registrations
		WHERE event_id = $1 AND status = $2
		ORDER BY created_at ASC, id ASC
	`, eventID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (r *RegistrationRepo) Stats(ctx context.Context, eventID uuid.UUID) (domain.EventStats, error) {
	stats := domain.EventStats{EventID: eventID}
	err := r.pool.QueryRow(ctx, `
		SELECT
			e.capacity,
			COUNT(*) FILTER (WHERE r.status = 'active'),
			COUNT(*) FILTER (WHERE r.status = 'queued'),
			COUNT(*) FILTER (WHERE r.status IN ('cancelled_fine','cancelled_nofine'))
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		WHERE e.id = $1
		GROUP BY e.capacity
	`, eventID).Scan(&stats.Capacity, &stats.ActiveCount, &stats.QueuedCount, &stats.CancelledCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats, domain.ErrEventNotFound
	}
	return stats, err
}

func (r *RegistrationRepo) QueuePosition(ctx context.Context, eventID, contactID uuid.UUID) (int, error) {
	var pos int
	err := r.pool.QueryRow(ctx, `
		WITH queue AS (
			SELECT contact_id,
			       ROW_NUMBER() OVER (ORDER BY created_at ASC, id ASC) AS pos
			FROM registrations
			WHERE event_id = $1 AND status = 'queued'
		)
		SELECT pos FROM queue WHERE contact_id = $2
	`, eventID, contactID).Scan(&pos)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return pos, err
}

func (r *RegistrationRepo) ListByContact(ctx context.Context, contactID uuid.UUID) ([]domain.Registration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+registrationColumns+`
		FROM registrations
		WHERE contact_id = $1
		ORDER BY created_at DESC, id DESC
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (r *RegistrationRepo) MarkPaid(ctx context.Context, registrationID int64, paid bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE registrations SET paid = $2 WHERE id = $1`, registrationID, paid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}

func collectRegistrations(rows pgx.Rows) ([]domain.Registration, error) {
	var out []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	return out, rows.Err()
}
