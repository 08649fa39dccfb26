package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestIdealStock(t *testing.T) {
	assert.Equal(t, int64(0), inventory.IdealStock(0))
	assert.Equal(t, int64(2), inventory.IdealStock(1))
	assert.Equal(t, int64(15), inventory.IdealStock(10))
	assert.Equal(t, int64(17), inventory.IdealStock(11))
}

func TestLowStock_OrdenaPorDeficit(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.addProduct(t, "A", 9, "2", 10)  // déficit 1
	f.addProduct(t, "B", 0, "3", 10)  // déficit 10
	f.addProduct(t, "C", 50, "1", 10) // sin déficit
	f.addProduct(t, "D", 10, "1", 10) // en el umbral: déficit 0

	uc := inventory.NewLowStockUseCase(f.store.Products())
	list, err := uc.List(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "B", list[0].ProductID)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, int64(15), list[0].SuggestedOrderQty)
	assert.Equal(t, "45", list[0].EstimatedOrderCost.String())
	assert.Equal(t, "A", list[1].ProductID)
	assert.Equal(t, "D", list[2].ProductID)

	page, err := uc.List(context.Background(), dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "A", page[0].ProductID)
	assert.Equal(t, 2, page[0].Priority, "la prioridad incluye el offset")
}

func TestStockQuery_GetStockYMovimientos(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.addProduct(t, "P1", 10, "2", 3)
	for i := 0; i < 4; i++ {
		_, err := f.engine.ApplyFromRequest(context.Background(), testActor, dto.StockAdjustmentRequest{
			ProductID: "P1", Type: "sale", Quantity: -1,
		})
		require.NoError(t, err)
	}

	q := inventory.NewStockQueryUseCase(f.store.Products(), f.store.Movements())
	stock, err := q.GetStock(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock.OnHand)
	assert.False(t, stock.LowStock)

	page, err := q.ListMovements(context.Background(), "P1", dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(6), page.Items[0].NewQty, "el más reciente primero")
	assert.Equal(t, int64(7), page.Items[1].NewQty)
	assert.Equal(t, page.Items[1].NewQty, page.Items[0].PreviousQty)

	_, err = q.ListMovements(context.Background(), "nope", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyFromRequest_TipoInvalido(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.addProduct(t, "P1", 1, "1", 0)

	_, err := f.engine.ApplyFromRequest(context.Background(), testActor, dto.StockAdjustmentRequest{
		ProductID: "P1", Type: "transfer", Quantity: 1,
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "type", vErr.Field)

	res, err := f.engine.ApplyFromRequest(context.Background(), testActor, dto.StockAdjustmentRequest{
		ProductID: " P1 ", Type: " Inbound ", Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementInbound, res.Movement.Type)
	assert.Equal(t, "P1", res.Movement.ProductID)
}
