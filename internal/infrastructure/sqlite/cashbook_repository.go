package sqlite

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var _ repository.CashbookRepository = (*CashbookRepo)(nil)

type cashbookRow struct {
	ID          string          `db:"id"`
	MovementID  string          `db:"movement_id"`
	ProductID   string          `db:"product_id"`
	Direction   string          `db:"direction"`
	Category    string          `db:"category"`
	Amount      decimal.Decimal `db:"amount"`
	Currency    string          `db:"currency"`
	Description string          `db:"description"`
	CreatedBy   string          `db:"created_by"`
	CreatedAt   int64           `db:"created_at"`
}

// CashbookRepo asientos del libro de caja sobre SQLite.
type CashbookRepo struct {
	db sqlx.ExtContext
}

// NewCashbookRepository construye el adaptador.
func NewCashbookRepository(db sqlx.ExtContext) *CashbookRepo {
	return &CashbookRepo{db: db}
}

// Create inserta un asiento.
func (r *CashbookRepo) Create(ctx context.Context, e *entity.CashbookEntry) error {
	row := cashbookRow{
		ID: e.ID, MovementID: e.MovementID, ProductID: e.ProductID, Direction: e.Direction,
		Category: e.Category, Amount: e.Amount, Currency: e.Currency, Description: e.Description,
		CreatedBy: e.CreatedBy, CreatedAt: e.CreatedAt.UnixMicro(),
	}
	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO cashbook_transactions (id, movement_id, product_id, direction, category, amount, currency, description, created_by, created_at)
		VALUES (:id, :movement_id, :product_id, :direction, :category, :amount, :currency, :description, :created_by, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("insert cashbook entry: %w", err)
	}
	return nil
}

// ListByMovement asientos generados por un movimiento.
func (r *CashbookRepo) ListByMovement(ctx context.Context, movementID string) ([]*entity.CashbookEntry, error) {
	var rows []cashbookRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT id, movement_id, product_id, direction, category, amount, currency, description, created_by, created_at
		FROM cashbook_transactions WHERE movement_id = ? ORDER BY created_at`, movementID)
	if err != nil {
		return nil, fmt.Errorf("list cashbook entries: %w", err)
	}
	list := make([]*entity.CashbookEntry, 0, len(rows))
	for _, row := range rows {
		list = append(list, &entity.CashbookEntry{
			ID: row.ID, MovementID: row.MovementID, ProductID: row.ProductID, Direction: row.Direction,
			Category: row.Category, Amount: row.Amount, Currency: row.Currency, Description: row.Description,
			CreatedBy: row.CreatedBy, CreatedAt: fromMicros(row.CreatedAt),
		})
	}
	return list, nil
}
