package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestNextBalance(t *testing.T) {
	assert.Equal(t, int64(30), inventory.NextBalance(10, 20))
	assert.Equal(t, int64(15), inventory.NextBalance(30, -15))
	assert.Equal(t, int64(0), inventory.NextBalance(5, -8), "se recorta en cero")
	assert.Equal(t, int64(0), inventory.NextBalance(0, -1))
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, inventory.ValidateRequest(entity.MovementInbound, 1))
	assert.NoError(t, inventory.ValidateRequest(entity.MovementSale, -1))
	assert.NoError(t, inventory.ValidateRequest(entity.MovementAdjustment, -100))
	assert.NoError(t, inventory.ValidateRequest(entity.MovementAdjustment, 100))
	assert.NoError(t, inventory.ValidateRequest(entity.MovementInbound, inventory.MaxQuantity))
	assert.NoError(t, inventory.ValidateRequest(entity.MovementSale, -inventory.MaxQuantity))

	for _, tc := range []struct {
		t     entity.MovementType
		delta int64
	}{
		{entity.MovementInbound, 0},
		{entity.MovementInbound, -3},
		{entity.MovementSale, 3},
		{entity.MovementAdjustment, 0},
		{entity.MovementType("transfer"), 1},
		{entity.MovementSale, math.MinInt64},
		{entity.MovementAdjustment, math.MinInt64},
		{entity.MovementInbound, math.MaxInt64},
		{entity.MovementAdjustment, inventory.MaxQuantity + 1},
		{entity.MovementAdjustment, -inventory.MaxQuantity - 1},
	} {
		err := inventory.ValidateRequest(tc.t, tc.delta)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%s %d", tc.t, tc.delta)
	}
}

func TestCheckAvailability(t *testing.T) {
	assert.NoError(t, inventory.CheckAvailability(entity.MovementSale, "P1", 5, -5))
	assert.NoError(t, inventory.CheckAvailability(entity.MovementAdjustment, "P1", 5, -50), "los ajustes no se rechazan")

	err := inventory.CheckAvailability(entity.MovementSale, "P1", 3, -10)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "P1", stockErr.ProductID)
	assert.Equal(t, int64(3), stockErr.OnHand)
	assert.Equal(t, int64(10), stockErr.Requested)
}

func TestCheckAvailability_SinDesbordes(t *testing.T) {
	err := inventory.CheckAvailability(entity.MovementSale, "P1", 3, math.MinInt64)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr, "una venta enorme nunca pasa la guarda")
	assert.Equal(t, int64(math.MaxInt64), stockErr.Requested)

	err = inventory.CheckAvailability(entity.MovementInbound, "P1", 10, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = inventory.CheckAvailability(entity.MovementAdjustment, "P1", math.MaxInt64, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.NoError(t, inventory.CheckAvailability(entity.MovementInbound, "P1", math.MaxInt64-5, 5))
	assert.NoError(t, inventory.CheckAvailability(entity.MovementAdjustment, "P1", 0, math.MinInt64), "los ajustes se recortan, no fallan")
}

func TestIsContinuous(t *testing.T) {
	assert.True(t, inventory.IsContinuous(&entity.StockMovement{BalanceBefore: 5, QuantityDelta: -8, BalanceAfter: 0}))
	assert.False(t, inventory.IsContinuous(&entity.StockMovement{BalanceBefore: 5, QuantityDelta: -8, BalanceAfter: 1}))
	assert.False(t, inventory.IsContinuous(&entity.StockMovement{BalanceBefore: -1, QuantityDelta: 1, BalanceAfter: 0}))
}
