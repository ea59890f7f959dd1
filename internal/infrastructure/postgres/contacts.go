package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loefbijter/loefsys/internal/domain"
)

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo { return &ContactRepo{pool: pool} }

const contactColumns = `
	id, email, first_name, last_name, nickname, phone_number, created_at, updated_at`

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.Nickname, &c.PhoneNumber,
		&c.Created, &c.Updated,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contacts (id, email, first_name, last_name, nickname, phone_number, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, c.ID, c.Email, c.FirstName, c.LastName, c.Nickname, c.PhoneNumber, c.Created, c.Updated)
	return err
}

func (r *ContactRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx,
		`SELECT`+contactColumns+` FROM contacts WHERE id = $1 AND NOT anonymized`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrContactNotFound
	}
	return c, err
}

func (r *ContactRepo) GetByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx,
		`SELECT`+contactColumns+` FROM contacts WHERE email = $1 AND NOT anonymized`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrContactNotFound
	}
	return c, err
}

func (r *ContactRepo) Update(ctx context.Context, c *domain.Contact) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET
			email=$2, first_name=$3, last_name=$4, nickname=$5, phone_number=$6, updated_at=$7
		WHERE id=$1 AND NOT anonymized
	`, c.ID, c.Email, c.FirstName, c.LastName, c.Nickname, c.PhoneNumber, c.Updated)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// Delete anonymizes the contact in place. Registration rows keep their history
// with contact_id nilled; the contacts row itself stays so membership history
// remains queryable.
func (r *ContactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE contacts SET
				email = 'deleted+' || id::text || '@invalid',
				first_name = '', last_name = '', nickname = '', phone_number = '',
				anonymized = TRUE, updated_at = NOW()
			WHERE id = $1 AND NOT anonymized
		`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrContactNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE registrations SET contact_id = NULL WHERE contact_id = $1`, id)
		return err
	})
}

func (r *ContactRepo) List(ctx context.Context, page, pageSize int) ([]*domain.Contact, int, error) {
	page, pageSize = clampPage(page, pageSize)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM contacts WHERE NOT anonymized`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+contactColumns+`
		FROM contacts
		WHERE NOT anonymized
		ORDER BY last_name ASC, first_name ASC
		LIMIT $1 OFFSET $2
	`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
