package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository ledger de movimientos: solo inserción, sin Update ni Delete.
type StockMovementRepository interface {
	// Append asigna ID y CreatedAt si faltan, persiste y devuelve el registro almacenado.
	Append(ctx context.Context, movement *entity.StockMovement) (*entity.StockMovement, error)
	// ListByProduct ordena por created_at DESC, id DESC; páginas estables por offset.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	// Latest devuelve el movimiento más reciente o nil si no hay ninguno.
	Latest(ctx context.Context, productID string) (*entity.StockMovement, error)
}
