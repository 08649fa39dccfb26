package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/cashbook"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createProduct(t *testing.T, repo *sqlite.ProductStockRepo, id, cost string, threshold int64) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entity.Product{
		ID: id, SKU: "SKU-" + id, Name: "producto " + id,
		CostCNY: decimal.RequireFromString(cost), LowStockThreshold: threshold,
	}))
}

func TestSQLite_ProductosYEscrituraCondicional(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := sqlite.NewProductStockRepository(db)
	createProduct(t, repo, "P1", "12.3456", 4)

	assert.ErrorIs(t, repo.Create(ctx, &entity.Product{ID: "P1"}), domain.ErrConflict)

	require.NoError(t, repo.SetOnHand(ctx, "P1", 0, 10))
	assert.ErrorIs(t, repo.SetOnHand(ctx, "P1", 0, 11), domain.ErrConflict)
	assert.ErrorIs(t, repo.SetOnHand(ctx, "nope", 0, 1), domain.ErrNotFound)
	assert.ErrorIs(t, repo.SetOnHand(ctx, "P1", 10, -1), domain.ErrInvalidInput)

	p, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.OnHand)
	assert.Equal(t, "12.3456", p.CostCNY.String())
	assert.False(t, p.UpdatedAt.IsZero())

	meta, err := repo.GetCostMetadata(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.LowStockThreshold)

	_, err = repo.GetOnHand(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLite_LedgerOrdenYCosto(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	createProduct(t, sqlite.NewProductStockRepository(db), "P1", "1", 0)
	movs := sqlite.NewStockMovementRepository(db, idgen.MustNew(2))

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cost := decimal.RequireFromString("2.75")
	for i := int64(0); i < 3; i++ {
		m := &entity.StockMovement{
			ProductID: "P1", Type: entity.MovementInbound, QuantityDelta: 1,
			BalanceBefore: i, BalanceAfter: i + 1, CreatedBy: "u", CreatedAt: base,
		}
		if i == 2 {
			m.UnitCost = &cost
		}
		_, err := movs.Append(ctx, m)
		require.NoError(t, err)
	}

	list, err := movs.ListByProduct(ctx, "P1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(3), list[0].BalanceAfter, "mismo instante: desempata el ID")
	require.NotNil(t, list[0].UnitCost)
	assert.Equal(t, "2.75", list[0].UnitCost.String())
	assert.Nil(t, list[1].UnitCost)
	assert.True(t, list[0].CreatedAt.Equal(base))

	n, err := movs.CountByProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	latest, err := movs.Latest(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, latest.ID)

	none, err := movs.Latest(ctx, "otro")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLite_TxRunnerRevierte(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	products := sqlite.NewProductStockRepository(db)
	createProduct(t, products, "P1", "1", 0)
	runner := sqlite.NewTxRunner(db, idgen.MustNew(1))
	boom := errors.New("boom")

	err := runner.Run(ctx, func(stock repository.ProductStockRepository, movs repository.StockMovementRepository) error {
		if err := stock.SetOnHand(ctx, "P1", 0, 5); err != nil {
			return err
		}
		if _, err := movs.Append(ctx, &entity.StockMovement{ProductID: "P1", Type: entity.MovementInbound, QuantityDelta: 5, BalanceAfter: 5, CreatedBy: "u"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := products.GetOnHand(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	count, err := sqlite.NewStockMovementRepository(db, idgen.MustNew(1)).CountByProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLite_MotorConcurrenteYCaja(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	ids := idgen.MustNew(3)
	products := sqlite.NewProductStockRepository(db)
	movements := sqlite.NewStockMovementRepository(db, ids)
	cash := sqlite.NewCashbookRepository(db)
	createProduct(t, products, "P1", "2", 0)

	engine := inventory.NewReconciliationEngine(sqlite.NewTxRunner(db, ids), products, cashbook.NewBridge(cash), nil, inventory.EngineConfig{
		MaxAttempts: 3, RetryBackoff: time.Millisecond,
	})
	_, err := engine.Apply(ctx, inventory.ApplyInput{ProductID: "P1", Type: entity.MovementInbound, QuantityDelta: 5, ActorID: "u"})
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := engine.Apply(ctx, inventory.ApplyInput{ProductID: "P1", Type: entity.MovementAdjustment, QuantityDelta: 1, ActorID: "u"})
			return err
		})
	}
	require.NoError(t, g.Wait())

	n, err := products.GetOnHand(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	list, err := movements.ListByProduct(ctx, "P1", 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 11)
	assert.Empty(t, inventory.Reconcile("P1", n, list))

	first := list[len(list)-1]
	entries, err := cash.ListByMovement(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.CashbookCategoryPurchase, entries[0].Category)
	assert.Equal(t, "10", entries[0].Amount.String())
}

func TestSQLite_ListLowStock(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := sqlite.NewProductStockRepository(db)
	createProduct(t, repo, "A", "1", 3)
	createProduct(t, repo, "B", "1", 8)
	createProduct(t, repo, "C", "1", 1)
	require.NoError(t, repo.SetOnHand(ctx, "C", 0, 4))

	list, err := repo.ListLowStock(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ID)
	assert.Equal(t, "A", list[1].ID)

	n, err := repo.CountLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
