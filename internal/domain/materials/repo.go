package materials

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Spok95/recycle-stock/internal/infra/db"
)

const uniqueViolation = "23505"

// Repo - Store на PostgreSQL.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, m Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (owner_id, name, description, unit)
		VALUES ($1,$2,$3,$4)
		RETURNING id, owner_id, name, description, unit, created_at, updated_at
	`, m.OwnerID, m.Name, m.Description, m.Unit)

	out, err := scanMaterial(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, ownerID, id int64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, description, unit, created_at, updated_at
		FROM materials
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
	`, id, ownerID)
	m, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *Repo) List(ctx context.Context, ownerID int64) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, description, unit, created_at, updated_at
		FROM materials
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY name, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, m Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials
		SET name = $3, description = $4, unit = $5, updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
		RETURNING id, owner_id, name, description, unit, created_at, updated_at
	`, m.ID, m.OwnerID, m.Name, m.Description, m.Unit)

	out, err := scanMaterial(row)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrNotFound
	case isUniqueViolation(err):
		return nil, ErrNameTaken
	default:
		return nil, err
	}
}

// Archive мягко удаляет материал с нулевым остатком. Строки материала и
// остатка блокируем, чтобы приход не проскочил между проверкой и удалением.
func (r *Repo) Archive(ctx context.Context, ownerID, id int64) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `
			SELECT id FROM materials
			WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
			FOR UPDATE
		`, id, ownerID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var qty decimal.Decimal
		err = tx.QueryRow(ctx, `
			SELECT qty FROM balances
			WHERE owner_id = $1 AND material_id = $2
			FOR UPDATE
		`, ownerID, id).Scan(&qty)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if qty.IsPositive() {
			return ErrInStock
		}

		_, err = tx.Exec(ctx, `UPDATE materials SET deleted_at = now() WHERE id = $1`, id)
		return err
	})
}

func scanMaterial(row pgx.Row) (*Material, error) {
	var m Material
	if err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&m.Name,
		&m.Description,
		&m.Unit,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
