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

type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo { return &GroupRepo{pool: pool} }

const groupColumns = `id, name, kind, description, active, created_at, updated_at`

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var g domain.Group
	var kind string
	err := row.Scan(&g.ID, &g.Name, &kind, &g.Description, &g.Active, &g.Created, &g.Updated)
	if err != nil {
		return nil, err
	}
	g.Kind = domain.GroupKind(kind)
	return &g, nil
}

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO groups (id, name, kind, description, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, g.ID, g.Name, string(g.Kind), g.Description, g.Active, g.Created, g.Updated)
	return err
}

func (r *GroupRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	return g, err
}

func (r *GroupRepo) Update(ctx context.Context, g *domain.Group) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE groups SET name=$2, kind=$3, description=$4, active=$5, updated_at=$6
		WHERE id=$1
	`, g.ID, g.Name, string(g.Kind), g.Description, g.Active, g.Updated)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepo) List(ctx context.Context, kind *domain.GroupKind, page, pageSize int) ([]*domain.Group, int, error) {
	page, pageSize = clampPage(page, pageSize)

	where := `WHERE ($1::text IS NULL OR kind = $1)`
	var kindArg *string
	if kind != nil {
		s := string(*kind)
		kindArg = &s
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM groups `+where, kindArg).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+groupColumns+` FROM groups `+where+`
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`, kindArg, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

// AddMember locks the group row so concurrent adds for the same contact cannot
// both pass the live-membership check.
func (r *GroupRepo) AddMember(ctx context.Context, gm *domain.GroupMembership) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var groupID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT id FROM groups WHERE id = $1 FOR UPDATE`, gm.GroupID).Scan(&groupID)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrGroupNotFound
		}
		if err != nil {
			return err
		}

		var liveID uuid.UUID
		err = tx.QueryRow(ctx, `
			SELECT id FROM group_memberships
			WHERE group_id = $1 AND contact_id = $2 AND until IS NULL
		`, gm.GroupID, gm.ContactID).Scan(&liveID)
		if err == nil {
			return domain.ErrValidation("contact is already a member of this group")
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO group_memberships (id, group_id, contact_id, chair, since, until)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, gm.ID, gm.GroupID, gm.ContactID, gm.Chair, gm.Since, gm.Until)
		return err
	})
}

func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, contactID uuid.UUID, until time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE group_memberships SET until = $3
		WHERE group_id = $1 AND contact_id = $2 AND until IS NULL
	`, groupID, contactID, until)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrValidation("contact has no live membership in this group")
	}
	return nil
}

func (r *GroupRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]domain.GroupMembership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, contact_id, chair, since, until
		FROM group_memberships
		WHERE group_id = $1
		ORDER BY since ASC, id ASC
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GroupMembership
	for rows.Next() {
		var gm domain.GroupMembership
		err := rows.Scan(&gm.ID, &gm.GroupID, &gm.ContactID, &gm.Chair, &gm.Since, &gm.Until)
		if err != nil {
			return nil, err
		}
		out = append(out, gm)
	}
	return out, rows.Err()
}
