package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestParseMovementType(t *testing.T) {
	for in, want := range map[string]entity.MovementType{
		"inbound":    entity.MovementInbound,
		" SALE ":     entity.MovementSale,
		"Adjustment": entity.MovementAdjustment,
	} {
		got, err := entity.ParseMovementType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "transfer", "IN", "purchase"} {
		_, err := entity.ParseMovementType(in)
		assert.Error(t, err, in)
	}
}

func TestStockMovement_DeltaAplicado(t *testing.T) {
	m := &entity.StockMovement{QuantityDelta: -8, BalanceBefore: 5, BalanceAfter: 0}
	assert.Equal(t, int64(-5), m.AppliedDelta())
	assert.True(t, m.Clamped())

	m = &entity.StockMovement{QuantityDelta: 3, BalanceBefore: 5, BalanceAfter: 8}
	assert.Equal(t, int64(3), m.AppliedDelta())
	assert.False(t, m.Clamped())
}

func TestProduct_IsLowStock(t *testing.T) {
	assert.True(t, (&entity.Product{OnHand: 10, LowStockThreshold: 10}).IsLowStock())
	assert.False(t, (&entity.Product{OnHand: 11, LowStockThreshold: 10}).IsLowStock())
	assert.True(t, (&entity.Product{}).IsLowStock(), "umbral 0 con stock 0")
}
