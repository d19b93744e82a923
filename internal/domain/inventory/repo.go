package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Spok95/recycle-stock/internal/infra/db"
)

// Repo - Store на PostgreSQL.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

func (r *Repo) Balances(ctx context.Context, ownerID int64) ([]Position, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.material_id, m.name, m.unit, b.qty, b.avg_cost, b.total_value
		FROM balances b
		JOIN materials m ON m.id = b.material_id
		WHERE b.owner_id = $1 AND b.qty > 0 AND m.deleted_at IS NULL
		ORDER BY m.name, m.id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Position{}
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.MaterialID, &p.Material, &p.Unit, &p.Quantity, &p.AverageCost, &p.TotalValue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Movements(ctx context.Context, ownerID int64, f MovementFilter) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT * FROM (
			SELECT e.id, 'entry'::text AS kind, e.material_id, m.name, m.unit, e.qty, e.unit_price, e.created_at
			FROM entries e
			JOIN materials m ON m.id = e.material_id
			WHERE e.owner_id = $1 AND ($2::bigint = 0 OR e.material_id = $2)
			UNION ALL
			SELECT x.id, 'exit'::text, x.material_id, m.name, m.unit, x.qty, NULL::numeric, x.created_at
			FROM exits x
			JOIN materials m ON m.id = x.material_id
			WHERE x.owner_id = $1 AND ($2::bigint = 0 OR x.material_id = $2)
		) mv
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, ownerID, f.MaterialID, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Movement{}
	for rows.Next() {
		var (
			mv    Movement
			kind  string
			price decimal.NullDecimal
		)
		if err := rows.Scan(&mv.ID, &kind, &mv.MaterialID, &mv.Material, &mv.Unit, &mv.Quantity, &price, &mv.CreatedAt); err != nil {
			return nil, err
		}
		mv.Kind = Kind(kind)
		if price.Valid {
			mv.UnitPrice = price.Decimal
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

type pgTx struct{ tx pgx.Tx }

func (t pgTx) LockMaterials(ctx context.Context, ownerID int64, ids []int64) (map[int64]MaterialRef, error) {
	// FOR SHARE не пустит удаление (FOR UPDATE) до нашего коммита
	rows, err := t.tx.Query(ctx, `
		SELECT id, name, unit
		FROM materials
		WHERE owner_id = $1 AND id = ANY($2) AND deleted_at IS NULL
		ORDER BY id
		FOR SHARE
	`, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("lock materials: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]MaterialRef, len(ids))
	for rows.Next() {
		var m MaterialRef
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit); err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (t pgTx) LockBalance(ctx context.Context, ownerID, materialID int64) (Balance, error) {
	if _, err := t.tx.Exec(ctx, `
		INSERT INTO balances (owner_id, material_id)
		VALUES ($1, $2)
		ON CONFLICT (owner_id, material_id) DO NOTHING
	`, ownerID, materialID); err != nil {
		return Balance{}, fmt.Errorf("create balance: %w", err)
	}

	b := Balance{OwnerID: ownerID, MaterialID: materialID}
	err := t.tx.QueryRow(ctx, `
		SELECT qty, avg_cost, total_value, updated_at
		FROM balances
		WHERE owner_id = $1 AND material_id = $2
		FOR UPDATE
	`, ownerID, materialID).Scan(&b.Quantity, &b.AverageCost, &b.TotalValue, &b.UpdatedAt)
	if err != nil {
		return Balance{}, fmt.Errorf("lock balance: %w", err)
	}
	return b, nil
}

func (t pgTx) SaveBalance(ctx context.Context, b Balance) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE balances
		SET qty = $3, avg_cost = $4, total_value = $5, updated_at = now()
		WHERE owner_id = $1 AND material_id = $2
	`, b.OwnerID, b.MaterialID, b.Quantity, b.AverageCost, b.TotalValue)
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

func (t pgTx) InsertEntry(ctx context.Context, e *Entry) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO entries (owner_id, material_id, qty, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, e.OwnerID, e.MaterialID, e.Quantity, e.UnitPrice).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (t pgTx) InsertExit(ctx context.Context, x *Exit) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO exits (owner_id, material_id, qty)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, x.OwnerID, x.MaterialID, x.Quantity).Scan(&x.ID, &x.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert exit: %w", err)
	}
	return nil
}
