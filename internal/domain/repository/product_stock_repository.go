package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductStockRepository puerto de persistencia del stock disponible por producto (DIP).
// SetOnHand es la única escritura del saldo y solo la invoca el motor de conciliación.
type ProductStockRepository interface {
	// GetOnHand devuelve el stock actual. domain.ErrNotFound si el producto no existe.
	GetOnHand(ctx context.Context, productID string) (int64, error)
	// SetOnHand escribe newValue solo si el valor almacenado sigue siendo expectedPrevious.
	// Devuelve domain.ErrConflict si cambió entre la lectura y la escritura; nunca sobrescribe.
	SetOnHand(ctx context.Context, productID string, expectedPrevious, newValue int64) error

	Get(ctx context.Context, productID string) (*entity.Product, error)
	GetCostMetadata(ctx context.Context, productID string) (*entity.CostMetadata, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListLowStock lista productos con on_hand <= low_stock_threshold, mayor déficit primero.
	ListLowStock(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	CountLowStock(ctx context.Context) (int, error)
	// Create registra un producto del catálogo con stock 0 (el stock inicial entra como movimiento).
	Create(ctx context.Context, product *entity.Product) error
}
