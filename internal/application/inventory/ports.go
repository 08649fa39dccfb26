package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de almacenamiento, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: el saldo y el movimiento se confirman juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.ProductStockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// CashbookBridge contrato con el libro de caja externo.
type CashbookBridge interface {
	Record(ctx context.Context, movement *entity.StockMovement) error
}
