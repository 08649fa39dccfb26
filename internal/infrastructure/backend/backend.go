// Package backend elige el adaptador de almacenamiento según DB_DRIVER.
package backend

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
)

// Backend repositorios y runner de transacciones de un mismo almacenamiento.
type Backend struct {
	Driver    string
	Products  repository.ProductStockRepository
	Movements repository.StockMovementRepository
	Cashbook  repository.CashbookRepository
	TxRunner  inventory.TxRunner
	closeFn   func() error
}

// Close libera conexiones.
func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// Open abre el almacenamiento configurado y aplica el esquema.
func Open(ctx context.Context, cfg config.DBConfig, ids *idgen.Generator) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Backend{
			Driver:    cfg.Driver,
			Products:  postgres.NewProductStockRepository(pool),
			Movements: postgres.NewStockMovementRepository(pool, ids),
			Cashbook:  postgres.NewCashbookRepository(pool),
			TxRunner:  postgres.NewTxRunner(pool, ids),
			closeFn:   func() error { pool.Close(); return nil },
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:    cfg.Driver,
			Products:  sqlite.NewProductStockRepository(db),
			Movements: sqlite.NewStockMovementRepository(db, ids),
			Cashbook:  sqlite.NewCashbookRepository(db),
			TxRunner:  sqlite.NewTxRunner(db, ids),
			closeFn:   db.Close,
		}, nil

	case config.DriverMemory:
		store := memory.NewStore(ids)
		return &Backend{
			Driver:    cfg.Driver,
			Products:  store.Products(),
			Movements: store.Movements(),
			Cashbook:  store.Cashbook(),
			TxRunner:  store,
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER no soportado: %q", cfg.Driver)
}
