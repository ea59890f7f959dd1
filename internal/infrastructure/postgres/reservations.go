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

type ReservationRepo struct {
	pool *pgxpool.Pool
}

func NewReservationRepo(pool *pgxpool.Pool) *ReservationRepo {
	return &ReservationRepo{pool: pool}
}

const itemColumns = `
	id, name, category, description, location, is_reservable, daily_price_cents,
	boat_type, person_capacity, has_engine, fleet, required_skippership_id,
	created_at, updated_at`

func scanItem(row pgx.Row) (*domain.ReservableItem, error) {
	var it domain.ReservableItem
	var category string
	err := row.Scan(
		&it.ID, &it.Name, &category, &it.Description, &it.Location,
		&it.IsReservable, &it.DailyPriceCents,
		&it.BoatType, &it.PersonCapacity, &it.HasEngine, &it.Fleet, &it.RequiredSkippershipID,
		&it.Created, &it.Updated,
	)
	if err != nil {
		return nil, err
	}
	it.Category = domain.ReservableCategory(category)
	return &it, nil
}

func (r *ReservationRepo) CreateItem(ctx context.Context, it *domain.ReservableItem) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reservable_items (
			id, name, category, description, location, is_reservable, daily_price_cents,
			boat_type, person_capacity, has_engine, fleet, required_skippership_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		it.ID, it.Name, string(it.Category), it.Description, it.Location,
		it.IsReservable, it.DailyPriceCents,
		it.BoatType, it.PersonCapacity, it.HasEngine, it.Fleet, it.RequiredSkippershipID,
		it.Created, it.Updated,
	)
	return err
}

func (r *ReservationRepo) GetItem(ctx context.Context, id uuid.UUID) (*domain.ReservableItem, error) {
	it, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT`+itemColumns+` FROM reservable_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	return it, err
}

func (r *ReservationRepo) UpdateItem(ctx context.Context, it *domain.ReservableItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reservable_items SET
			name=$2, category=$3, description=$4, location=$5,
			is_reservable=$6, daily_price_cents=$7,
			boat_type=$8, person_capacity=$9, has_engine=$10, fleet=$11,
			required_skippership_id=$12, updated_at=$13
		WHERE id=$1
	`,
		it.ID, it.Name, string(it.Category), it.Description, it.Location,
		it.IsReservable, it.DailyPriceCents,
		it.BoatType, it.PersonCapacity, it.HasEngine, it.Fleet,
		it.RequiredSkippershipID, it.Updated,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ReservationRepo) ListItems(ctx context.Context, category *domain.ReservableCategory) ([]*domain.ReservableItem, error) {
	var catArg *string
	if category != nil {
		s := string(*category)
		catArg = &s
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+itemColumns+`
		FROM reservable_items
		WHERE ($1::text IS NULL OR category = $1)
		ORDER BY name ASC
	`, catArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ReservableItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// CreateReservation validates availability, overlap and skippership under the
// item row lock, then inserts the claim. Overlap is compared in code so the
// rule matches the event logic exactly: touching end/start is not a conflict.
func (r *ReservationRepo) CreateReservation(ctx context.Context, traceID string, res *domain.Reservation) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		it, err := scanItem(tx.QueryRow(ctx,
			`SELECT`+itemColumns+` FROM reservable_items WHERE id = $1 FOR UPDATE`, res.ItemID))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		if !it.IsReservable {
			return domain.ErrItemUnavailable
		}

		if it.RequiresSkippership() {
			if res.AuthorizedSkippershipID == nil {
				return domain.ErrSkipperRequired
			}
			// The named grant must belong to the reserving contact and cover
			// the skippership the item requires.
			var ok bool
			err := tx.QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM user_skipperships
					WHERE id = $1 AND contact_id = $2 AND skippership_id = $3
				)
			`, res.AuthorizedSkippershipID, res.ContactID, it.RequiredSkippershipID).Scan(&ok)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrSkipperNotAuthorized
			}
		}

		existing, err := listReservations(ctx, tx, res.ItemID, res.Start, res.End)
		if err != nil {
			return err
		}
		intervals := make([]domain.Interval, 0, len(existing))
		for i := range existing {
			intervals = append(intervals, existing[i].Interval())
		}
		if domain.Overlaps(res.Interval(), intervals) {
			return domain.ErrReservationConflict
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reservations (
				id, item_id, contact_id, start_time, end_time,
				authorized_skippership_id, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, res.ID, res.ItemID, res.ContactID, res.Start, res.End,
			res.AuthorizedSkippershipID, res.Created)
		if err != nil {
			return err
		}

		return insertOutbox(ctx, tx, traceID, rkReservationCreated, map[string]any{
			"reservation_id": res.ID,
			"item_id":        res.ItemID,
			"contact_id":     res.ContactID,
			"start":          res.Start,
			"end":            res.End,
		})
	})
}

const reservationColumns = `
	id, item_id, contact_id, start_time, end_time, authorized_skippership_id, created_at`

func listReservations(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, from, to time.Time) ([]domain.Reservation, error) {
	rows, err := tx.Query(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE item_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`, itemID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *ReservationRepo) ListForItem(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE item_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`, itemID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *ReservationRepo) ListByContact(ctx context.Context, contactID uuid.UUID) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+reservationColumns+`
		FROM reservations
		WHERE contact_id = $1
		ORDER BY start_time DESC
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		err := rows.Scan(
			&res.ID, &res.ItemID, &res.ContactID, &res.Start, &res.End,
			&res.AuthorizedSkippershipID, &res.Created,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ReservationRepo) CreateSkippership(ctx context.Context, s *domain.Skippership) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO skipperships (id, name) VALUES ($1, $2)`, s.ID, s.Name)
	return err
}

func (r *ReservationRepo) GrantSkippership(ctx context.Context, us *domain.UserSkippership) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_skipperships (id, contact_id, skippership_id, since)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (contact_id, skippership_id) DO NOTHING
	`, us.ID, us.ContactID, us.SkippershipID, us.Since)
	return err
}

func (r *ReservationRepo) ListSkipperships(ctx context.Context, contactID uuid.UUID) ([]domain.UserSkippership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, contact_id, skippership_id, since
		FROM user_skipperships
		WHERE contact_id = $1
		ORDER BY since ASC
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserSkippership
	for rows.Next() {
		var us domain.UserSkippership
		if err := rows.Scan(&us.ID, &us.ContactID, &us.SkippershipID, &us.Since); err != nil {
			return nil, err
		}
		out = append(out, us)
	}
	return out, rows.Err()
}
