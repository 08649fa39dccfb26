package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CashbookRepository persistencia de los asientos del libro de caja generados desde el stock.
type CashbookRepository interface {
	Create(ctx context.Context, entry *entity.CashbookEntry) error
	ListByMovement(ctx context.Context, movementID string) ([]*entity.CashbookEntry, error)
}
