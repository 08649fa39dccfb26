package sqlite

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
	"github.com/jmoiron/sqlx"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite (BEGIN IMMEDIATE vía _txlock).
type TxRunner struct {
	db  *sqlx.DB
	ids *idgen.Generator
}

// NewTxRunner construye el runner.
func NewTxRunner(db *sqlx.DB, ids *idgen.Generator) *TxRunner {
	return &TxRunner{db: db, ids: ids}
}

// Run abre la transacción, ejecuta fn con repos atados a ella y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.ProductStockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewProductStockRepository(tx), NewStockMovementRepository(tx, r.ids)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
