package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

var _ repository.ProductStockRepository = (*ProductStockRepo)(nil)

type productRow struct {
	ID                string          `db:"id"`
	SKU               string          `db:"sku"`
	Name              string          `db:"name"`
	OnHand            int64           `db:"on_hand"`
	LowStockThreshold int64           `db:"low_stock_threshold"`
	CostCNY           decimal.Decimal `db:"cost_cny"`
	UpdatedAt         int64           `db:"updated_at"`
}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{
		ID:                r.ID,
		SKU:               r.SKU,
		Name:              r.Name,
		OnHand:            r.OnHand,
		LowStockThreshold: r.LowStockThreshold,
		CostCNY:           r.CostCNY,
		UpdatedAt:         fromMicros(r.UpdatedAt),
	}
}

const selectProduct = `SELECT id, sku, name, on_hand, low_stock_threshold, cost_cny, updated_at FROM products`

// ProductStockRepo catálogo y saldo sobre SQLite. Acepta *sqlx.DB o *sqlx.Tx.
type ProductStockRepo struct {
	db sqlx.ExtContext
}

// NewProductStockRepository construye el adaptador.
func NewProductStockRepository(db sqlx.ExtContext) *ProductStockRepo {
	return &ProductStockRepo{db: db}
}

// GetOnHand stock actual del producto.
func (r *ProductStockRepo) GetOnHand(ctx context.Context, productID string) (int64, error) {
	var onHand int64
	err := sqlx.GetContext(ctx, r.db, &onHand, `SELECT on_hand FROM products WHERE id = ?`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get on_hand: %w", err)
	}
	return onHand, nil
}

// SetOnHand escritura condicional sobre on_hand.
func (r *ProductStockRepo) SetOnHand(ctx context.Context, productID string, expectedPrevious, newValue int64) error {
	if newValue < 0 {
		return domain.NewValidationError("on_hand", "no puede ser negativo")
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET on_hand = ?, updated_at = ? WHERE id = ? AND on_hand = ?`,
		newValue, nowMicros(), productID, expectedPrevious,
	)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintCheck) {
			return domain.NewValidationError("on_hand", "no puede ser negativo")
		}
		return fmt.Errorf("set on_hand: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set on_hand: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`, productID); err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// Get producto por ID.
func (r *ProductStockRepo) Get(ctx context.Context, productID string) (*entity.Product, error) {
	var row productRow
	if err := sqlx.GetContext(ctx, r.db, &row, selectProduct+` WHERE id = ?`, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.toEntity(), nil
}

// GetCostMetadata costo y umbral del catálogo.
func (r *ProductStockRepo) GetCostMetadata(ctx context.Context, productID string) (*entity.CostMetadata, error) {
	var row struct {
		CostCNY           decimal.Decimal `db:"cost_cny"`
		LowStockThreshold int64           `db:"low_stock_threshold"`
	}
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT cost_cny, low_stock_threshold FROM products WHERE id = ?`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get cost metadata: %w", err)
	}
	return &entity.CostMetadata{ProductID: productID, UnitCost: row.CostCNY, LowStockThreshold: row.LowStockThreshold}, nil
}

// List productos ordenados por ID.
func (r *ProductStockRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(ctx, selectProduct+` ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

// ListLowStock productos en o bajo el umbral, mayor déficit primero.
func (r *ProductStockRepo) ListLowStock(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(ctx, selectProduct+`
		WHERE on_hand <= low_stock_threshold
		ORDER BY (low_stock_threshold - on_hand) DESC, id
		LIMIT ? OFFSET ?`, limit, offset)
}

func (r *ProductStockRepo) CountLowStock(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT count(*) FROM products WHERE on_hand <= low_stock_threshold`); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

// Create inserta un producto con stock 0.
func (r *ProductStockRepo) Create(ctx context.Context, p *entity.Product) error {
	now := nowMicros()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, on_hand, low_stock_threshold, cost_cny, updated_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)`,
		p.ID, p.SKU, p.Name, p.LowStockThreshold, p.CostCNY, now,
	)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintPrimaryKey) || isConstraint(err, sqlite3.ErrConstraintUnique) {
			return fmt.Errorf("producto %s: %w", p.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.OnHand = 0
	p.UpdatedAt = fromMicros(now)
	return nil
}

func (r *ProductStockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	list := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}
