package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockQueryUseCase lecturas de stock y del ledger. No modifica nada.
type StockQueryUseCase struct {
	products  repository.ProductStockRepository
	movements repository.StockMovementRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(products repository.ProductStockRepository, movements repository.StockMovementRepository) *StockQueryUseCase {
	return &StockQueryUseCase{products: products, movements: movements}
}

// GetStock devuelve el stock actual. domain.ErrNotFound si el producto no existe.
func (uc *StockQueryUseCase) GetStock(ctx context.Context, productID string) (*dto.StockResponse, error) {
	p, err := uc.products.Get(ctx, productID)
	if err != nil {
		return nil, classify("leer producto", err)
	}
	return &dto.StockResponse{
		ProductID:         p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		OnHand:            p.OnHand,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		CostCNY:           p.CostCNY,
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

// ListMovements página del ledger de un producto, más reciente primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, productID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	if _, err := uc.products.GetOnHand(ctx, productID); err != nil {
		return nil, classify("leer producto", err)
	}
	list, err := uc.movements.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, classify("listar movimientos", err)
	}
	total, err := uc.movements.CountByProduct(ctx, productID)
	if err != nil {
		return nil, classify("contar movimientos", err)
	}
	items := make([]dto.MovementDTO, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementDTO(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}
