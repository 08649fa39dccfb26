package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, movement_type, quantity, previous_quantity, new_quantity,
	cost_per_unit, reason, notes, skip_cashbook, created_by, created_at`

// StockMovementRepo ledger de movimientos sobre PostgreSQL (usable con pool o tx). Solo INSERT.
type StockMovementRepo struct {
	q   Querier
	ids *idgen.Generator
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier, ids *idgen.Generator) *StockMovementRepo {
	return &StockMovementRepo{q: q, ids: ids}
}

// Append persiste un movimiento. Asigna ID y CreatedAt si faltan.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) (*entity.StockMovement, error) {
	stored := *m
	if stored.ID == "" {
		stored.ID = r.ids.Next()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = nowUTC()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		stored.ID, stored.ProductID, string(stored.Type), stored.QuantityDelta,
		stored.BalanceBefore, stored.BalanceAfter, toNullDecimal(stored.UnitCost),
		stored.Reason, stored.Note, stored.SkipCashbook, stored.CreatedBy, stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stock movement: %w", err)
	}
	return &stored, nil
}

// ListByProduct lista movimientos de un producto, más reciente primero (created_at, id como desempate).
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CountByProduct total de movimientos de un producto.
func (r *StockMovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

// Latest devuelve el último movimiento o nil.
func (r *StockMovementRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest movement: %w", err)
	}
	return m, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m        entity.StockMovement
		mType    string
		unitCost decimal.NullDecimal
	)
	if err := row.Scan(&m.ID, &m.ProductID, &mType, &m.QuantityDelta, &m.BalanceBefore, &m.BalanceAfter,
		&unitCost, &m.Reason, &m.Note, &m.SkipCashbook, &m.CreatedBy, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(mType)
	m.UnitCost = fromNullDecimal(unitCost)
	return &m, nil
}
