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

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo { return &EventRepo{pool: pool} }

const eventColumns = `
	id, organizer_id, title, description, slug, location, category,
	start_time, end_time,
	registration_start, registration_deadline, cancellation_deadline,
	capacity, price_cents, fine_cents,
	is_open_event, published, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var category string
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Slug, &e.Location, &category,
		&e.Start, &e.End,
		&e.RegistrationStart, &e.RegistrationDeadline, &e.CancellationDeadline,
		&e.Capacity, &e.PriceCents, &e.FineCents,
		&e.IsOpenEvent, &e.Published, &e.Created, &e.Updated,
	)
	if err != nil {
		return nil, err
	}
	e.Category = domain.EventCategory(category)
	return &e, nil
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (
			id, organizer_id, title, description, slug, location, category,
			start_time, end_time,
			registration_start, registration_deadline, cancellation_deadline,
			capacity, price_cents, fine_cents,
			is_open_event, published, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		e.ID, e.OrganizerID, e.Title, e.Description, e.Slug, e.Location, string(e.Category),
		e.Start, e.End,
		e.RegistrationStart, e.RegistrationDeadline, e.CancellationDeadline,
		e.Capacity, e.PriceCents, e.FineCents,
		e.IsOpenEvent, e.Published, e.Created, e.Updated,
	)
	return err
}

func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	return e, err
}

func (r *EventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	return e, err
}

// lockEvent loads the events row FOR UPDATE. Register and Cancel call this
// before touching any registration rows.
func lockEvent(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Event, error) {
	e, err := scanEvent(tx.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	return e, err
}

func (r *EventRepo) Update(ctx context.Context, e *domain.Event) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events SET
			title=$2, description=$3, slug=$4, location=$5, category=$6,
			start_time=$7, end_time=$8,
			registration_start=$9, registration_deadline=$10, cancellation_deadline=$11,
			capacity=$12, price_cents=$13, fine_cents=$14,
			is_open_event=$15, published=$16, updated_at=$17
		WHERE id=$1
	`,
		e.ID,
		e.Title, e.Description, e.Slug, e.Location, string(e.Category),
		e.Start, e.End,
		e.RegistrationStart, e.RegistrationDeadline, e.CancellationDeadline,
		e.Capacity, e.PriceCents, e.FineCents,
		e.IsOpenEvent, e.Published, e.Updated,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepo) ListUpcoming(ctx context.Context, after time.Time, page, pageSize int) ([]*domain.Event, int, error) {
	page, pageSize = clampPage(page, pageSize)

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE published AND end_time > $1`, after).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+eventColumns+`
		FROM events
		WHERE published AND end_time > $1
		ORDER BY start_time ASC
		LIMIT $2 OFFSET $3
	`, after, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectEvents(rows)
	return out, total, err
}

func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, page, pageSize int) ([]*domain.Event, int, error) {
	page, pageSize = clampPage(page, pageSize)

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE organizer_id = $1`, organizerID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+eventColumns+`
		FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, organizerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectEvents(rows)
	return out, total, err
}

func collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
