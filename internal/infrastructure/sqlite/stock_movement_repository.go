package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

type movementRow struct {
	ID               string              `db:"id"`
	ProductID        string              `db:"product_id"`
	MovementType     string              `db:"movement_type"`
	Quantity         int64               `db:"quantity"`
	PreviousQuantity int64               `db:"previous_quantity"`
	NewQuantity      int64               `db:"new_quantity"`
	CostPerUnit      decimal.NullDecimal `db:"cost_per_unit"`
	Reason           string              `db:"reason"`
	Notes            string              `db:"notes"`
	SkipCashbook     bool                `db:"skip_cashbook"`
	CreatedBy        string              `db:"created_by"`
	CreatedAt        int64               `db:"created_at"`
}

func (r movementRow) toEntity() *entity.StockMovement {
	m := &entity.StockMovement{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Type:          entity.MovementType(r.MovementType),
		QuantityDelta: r.Quantity,
		BalanceBefore: r.PreviousQuantity,
		BalanceAfter:  r.NewQuantity,
		Reason:        r.Reason,
		Note:          r.Notes,
		SkipCashbook:  r.SkipCashbook,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     fromMicros(r.CreatedAt),
	}
	if r.CostPerUnit.Valid {
		c := r.CostPerUnit.Decimal
		m.UnitCost = &c
	}
	return m
}

const selectMovement = `SELECT id, product_id, movement_type, quantity, previous_quantity, new_quantity,
	cost_per_unit, reason, notes, skip_cashbook, created_by, created_at FROM stock_movements`

// StockMovementRepo ledger sobre SQLite. Solo INSERT.
type StockMovementRepo struct {
	db  sqlx.ExtContext
	ids *idgen.Generator
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(db sqlx.ExtContext, ids *idgen.Generator) *StockMovementRepo {
	return &StockMovementRepo{db: db, ids: ids}
}

// Append persiste el movimiento asignando ID y CreatedAt si faltan.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) (*entity.StockMovement, error) {
	stored := *m
	if stored.ID == "" {
		stored.ID = r.ids.Next()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = fromMicros(nowMicros())
	}
	row := movementRow{
		ID:               stored.ID,
		ProductID:        stored.ProductID,
		MovementType:     string(stored.Type),
		Quantity:         stored.QuantityDelta,
		PreviousQuantity: stored.BalanceBefore,
		NewQuantity:      stored.BalanceAfter,
		Reason:           stored.Reason,
		Notes:            stored.Note,
		SkipCashbook:     stored.SkipCashbook,
		CreatedBy:        stored.CreatedBy,
		CreatedAt:        stored.CreatedAt.UnixMicro(),
	}
	if stored.UnitCost != nil {
		row.CostPerUnit = decimal.NullDecimal{Decimal: *stored.UnitCost, Valid: true}
	}
	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, previous_quantity, new_quantity,
			cost_per_unit, reason, notes, skip_cashbook, created_by, created_at)
		VALUES (:id, :product_id, :movement_type, :quantity, :previous_quantity, :new_quantity,
			:cost_per_unit, :reason, :notes, :skip_cashbook, :created_by, :created_at)`, row)
	if err != nil {
		return nil, fmt.Errorf("insert stock movement: %w", err)
	}
	stored.CreatedAt = fromMicros(row.CreatedAt)
	return &stored, nil
}

// ListByProduct movimientos del producto, más reciente primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var rows []movementRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		selectMovement+` WHERE product_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	list := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// CountByProduct total de movimientos del producto.
func (r *StockMovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT count(*) FROM stock_movements WHERE product_id = ?`, productID); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

// Latest último movimiento o nil.
func (r *StockMovementRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	var row movementRow
	err := sqlx.GetContext(ctx, r.db, &row,
		selectMovement+` WHERE product_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest movement: %w", err)
	}
	return row.toEntity(), nil
}
