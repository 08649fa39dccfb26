package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// LowStockUseCase genera la lista de reposición de productos en o bajo su umbral.
type LowStockUseCase struct {
	products repository.ProductStockRepository
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(products repository.ProductStockRepository) *LowStockUseCase {
	return &LowStockUseCase{products: products}
}

// List devuelve los productos bajo umbral con la cantidad sugerida de pedido.
// El repositorio ya ordena por mayor déficit; Priority es global (incluye el offset).
func (uc *LowStockUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.LowStockSuggestionDTO, error) {
	page.DefaultPage()
	items, err := uc.products.ListLowStock(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, classify("listar stock bajo", err)
	}

	suggestions := make([]dto.LowStockSuggestionDTO, 0, len(items))
	for i, p := range items {
		ideal := IdealStock(p.LowStockThreshold)
		suggested := ideal - p.OnHand
		if suggested < 0 {
			suggested = 0
		}
		suggestions = append(suggestions, dto.LowStockSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			OnHand:             p.OnHand,
			LowStockThreshold:  p.LowStockThreshold,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           p.CostCNY,
			EstimatedOrderCost: p.CostCNY.Mul(decimal.NewFromInt(suggested)),
			Priority:           page.Offset + i + 1,
		})
	}
	return suggestions, nil
}

// Count total de productos en o bajo su umbral, independiente de la página.
func (uc *LowStockUseCase) Count(ctx context.Context) (int, error) {
	n, err := uc.products.CountLowStock(ctx)
	if err != nil {
		return 0, classify("contar stock bajo", err)
	}
	return n, nil
}

// IdealStock = ceil(umbral * 1.5)
func IdealStock(threshold int64) int64 {
	return (threshold*3 + 1) / 2
}
