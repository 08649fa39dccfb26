package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CashbookRepository = (*CashbookRepo)(nil)

// CashbookRepo asientos del libro de caja en la tabla cashbook_transactions.
type CashbookRepo struct {
	q Querier
}

// NewCashbookRepository construye el adaptador.
func NewCashbookRepository(q Querier) *CashbookRepo {
	return &CashbookRepo{q: q}
}

// Create inserta un asiento.
func (r *CashbookRepo) Create(ctx context.Context, e *entity.CashbookEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cashbook_transactions (id, movement_id, product_id, direction, category, amount, currency, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.MovementID, e.ProductID, e.Direction, e.Category, e.Amount, e.Currency, e.Description, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cashbook entry: %w", err)
	}
	return nil
}

// ListByMovement asientos generados por un movimiento.
func (r *CashbookRepo) ListByMovement(ctx context.Context, movementID string) ([]*entity.CashbookEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, movement_id, product_id, direction, category, amount, currency, description, created_by, created_at
		FROM cashbook_transactions WHERE movement_id = $1 ORDER BY created_at`, movementID)
	if err != nil {
		return nil, fmt.Errorf("list cashbook entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashbookEntry
	for rows.Next() {
		var e entity.CashbookEntry
		if err := rows.Scan(&e.ID, &e.MovementID, &e.ProductID, &e.Direction, &e.Category, &e.Amount,
			&e.Currency, &e.Description, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cashbook entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
