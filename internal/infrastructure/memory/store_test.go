package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore(idgen.MustNew(1))
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: "P1", SKU: "SKU1", Name: "uno", LowStockThreshold: 5, CostCNY: decimal.NewFromInt(3),
	}))
	return s
}

func TestProducts_CreateSiempreConStockCero(t *testing.T) {
	s := memory.NewStore(idgen.MustNew(1))
	p := &entity.Product{ID: "X", OnHand: 99}
	require.NoError(t, s.Products().Create(context.Background(), p))
	assert.Equal(t, int64(0), p.OnHand)

	n, err := s.Products().GetOnHand(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.ErrorIs(t, s.Products().Create(context.Background(), &entity.Product{ID: "X"}), domain.ErrConflict)
}

func TestProducts_SetOnHandCondicional(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	repo := s.Products()

	require.NoError(t, repo.SetOnHand(ctx, "P1", 0, 10))
	assert.ErrorIs(t, repo.SetOnHand(ctx, "P1", 0, 20), domain.ErrConflict, "nunca sobrescribe un valor distinto al esperado")
	assert.ErrorIs(t, repo.SetOnHand(ctx, "P1", 10, -1), domain.ErrInvalidInput)
	assert.ErrorIs(t, repo.SetOnHand(ctx, "nope", 0, 1), domain.ErrNotFound)

	n, err := repo.GetOnHand(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestProducts_GetYMetadatos(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p, err := s.Products().Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "SKU1", p.SKU)

	meta, err := s.Products().GetCostMetadata(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "3", meta.UnitCost.String())
	assert.Equal(t, int64(5), meta.LowStockThreshold)

	_, err = s.Products().Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRun_RollbackAnteError(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(stock repository.ProductStockRepository, movs repository.StockMovementRepository) error {
		require.NoError(t, stock.SetOnHand(ctx, "P1", 0, 7))
		_, err := movs.Append(ctx, &entity.StockMovement{ProductID: "P1", Type: entity.MovementInbound, QuantityDelta: 7, BalanceAfter: 7, CreatedBy: "u"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := s.Products().GetOnHand(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	count, err := s.Movements().CountByProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRun_CommitVisibleFuera(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.Run(ctx, func(stock repository.ProductStockRepository, movs repository.StockMovementRepository) error {
		if err := stock.SetOnHand(ctx, "P1", 0, 7); err != nil {
			return err
		}
		_, err := movs.Append(ctx, &entity.StockMovement{ProductID: "P1", Type: entity.MovementInbound, QuantityDelta: 7, BalanceAfter: 7, CreatedBy: "u"})
		return err
	})
	require.NoError(t, err)

	latest, err := s.Movements().Latest(ctx, "P1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(7), latest.BalanceAfter)
}

func TestMovements_OrdenYPaginacion(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Dos movimientos con el mismo instante: desempata el ID.
	for i, at := range []time.Time{base, base.Add(time.Second), base.Add(time.Second), base.Add(2 * time.Second)} {
		_, err := s.Movements().Append(ctx, &entity.StockMovement{
			ProductID: "P1", Type: entity.MovementInbound, QuantityDelta: 1,
			BalanceBefore: int64(i), BalanceAfter: int64(i + 1), CreatedBy: "u", CreatedAt: at,
		})
		require.NoError(t, err)
	}

	all, err := s.Movements().ListByProduct(ctx, "P1", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, want := range []int64{4, 3, 2, 1} {
		assert.Equal(t, want, all[i].BalanceAfter)
	}

	page, err := s.Movements().ListByProduct(ctx, "P1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[2].ID, page[0].ID)

	empty, err := s.Movements().ListByProduct(ctx, "P1", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	none, err := s.Movements().Latest(ctx, "otro")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMovements_AppendDevuelveCopia(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	in := &entity.StockMovement{ProductID: "P1", Type: entity.MovementInbound, QuantityDelta: 1, BalanceAfter: 1, CreatedBy: "u"}

	stored, err := s.Movements().Append(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, in.ID, "el argumento no se modifica")
	assert.NotEmpty(t, stored.ID)

	stored.BalanceAfter = 999
	latest, err := s.Movements().Latest(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest.BalanceAfter, "el ledger es inmutable desde fuera")
}

func TestProducts_ListLowStock(t *testing.T) {
	s := newStore(t) // P1: 0 de 5
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "P2", LowStockThreshold: 1}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "P3", LowStockThreshold: 1}))
	require.NoError(t, s.Products().SetOnHand(ctx, "P3", 0, 2))

	list, err := s.Products().ListLowStock(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "P1", list[0].ID)
	assert.Equal(t, "P2", list[1].ID)

	page, err := s.Products().ListLowStock(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	n, err := s.Products().CountLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "el total no depende de la página")

	all, err := s.Products().List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "P1", all[0].ID)
	assert.Equal(t, "P2", all[1].ID)
}
