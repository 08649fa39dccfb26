package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func mov(id string, before, delta, after int64) *entity.StockMovement {
	return &entity.StockMovement{
		ID: id, ProductID: "P1", Type: entity.MovementAdjustment,
		QuantityDelta: delta, BalanceBefore: before, BalanceAfter: after,
		CreatedAt: time.Now().UTC(),
	}
}

func TestReconcile_LedgerConsistente(t *testing.T) {
	newestFirst := []*entity.StockMovement{
		mov("3", 5, -8, 0), // recortado
		mov("2", 10, -5, 5),
		mov("1", 0, 10, 10),
	}
	assert.Empty(t, inventory.Reconcile("P1", 0, newestFirst))
}

func TestReconcile_SaldoNoCoincideConUltimoMovimiento(t *testing.T) {
	out := inventory.Reconcile("P1", 7, []*entity.StockMovement{mov("1", 0, 5, 5)})
	require.Len(t, out, 1)
	assert.Equal(t, inventory.DiscrepancyOnHandMismatch, out[0].Kind)
	assert.Equal(t, int64(5), out[0].Expected)
	assert.Equal(t, int64(7), out[0].Actual)
	assert.Equal(t, "1", out[0].MovementID)
}

func TestReconcile_CadenaRota(t *testing.T) {
	out := inventory.Reconcile("P1", 9, []*entity.StockMovement{
		mov("2", 6, 3, 9), // debería empezar en 5
		mov("1", 0, 5, 5),
	})
	require.Len(t, out, 1)
	assert.Equal(t, inventory.DiscrepancyBrokenChain, out[0].Kind)
	assert.Equal(t, "2", out[0].MovementID)
	assert.Equal(t, int64(5), out[0].Expected)
	assert.Equal(t, int64(6), out[0].Actual)
}

func TestReconcile_FormulaDeSaldo(t *testing.T) {
	out := inventory.Reconcile("P1", 4, []*entity.StockMovement{mov("1", 0, 5, 4)})
	require.Len(t, out, 1)
	assert.Equal(t, inventory.DiscrepancyBalanceFormula, out[0].Kind)
	assert.Equal(t, int64(5), out[0].Expected)
}

func TestReconcile_SinHistorial(t *testing.T) {
	assert.Empty(t, inventory.Reconcile("P1", 0, nil))

	out := inventory.Reconcile("P1", 3, nil)
	require.Len(t, out, 1)
	assert.Equal(t, inventory.DiscrepancyNoHistory, out[0].Kind)
}

func TestAuditRun_RecorreTodosLosProductos(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.addProduct(t, "A", 5, "1", 0)
	f.addProduct(t, "B", 0, "1", 0)
	f.addProduct(t, "C", 8, "1", 0)
	_, err := f.engine.Apply(context.Background(), inventory.ApplyInput{
		ProductID: "C", Type: entity.MovementAdjustment, QuantityDelta: -20, ActorID: testActor,
	})
	require.NoError(t, err)

	audit := inventory.NewAuditUseCase(f.store.Products(), f.store.Movements(), inventory.AuditConfig{PageSize: 2, Concurrency: 2})
	report, err := audit.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked, "la paginación debe cubrir todos los productos")
	assert.Empty(t, report.Discrepancies)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}
