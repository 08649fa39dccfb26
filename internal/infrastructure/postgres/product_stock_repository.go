package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductStockRepository = (*ProductStockRepo)(nil)

const productColumns = `id, sku, name, on_hand, low_stock_threshold, cost_cny, updated_at`

// ProductStockRepo implementación de ProductStockRepository sobre PostgreSQL (usable con pool o tx).
type ProductStockRepo struct {
	q          Querier
	lockOnRead bool // dentro de TxRunner: GetOnHand bloquea la fila (SELECT FOR UPDATE)
}

// NewProductStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductStockRepository(q Querier) *ProductStockRepo {
	return &ProductStockRepo{q: q}
}

func newLockingProductStockRepository(tx pgx.Tx) *ProductStockRepo {
	return &ProductStockRepo{q: tx, lockOnRead: true}
}

// GetOnHand obtiene el stock actual. Dentro de una transacción del motor bloquea la fila
// para que las escrituras concurrentes esperen en lugar de chocar con la escritura condicional.
func (r *ProductStockRepo) GetOnHand(ctx context.Context, productID string) (int64, error) {
	query := `SELECT on_hand FROM products WHERE id = $1`
	if r.lockOnRead {
		query += ` FOR UPDATE`
	}
	var onHand int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&onHand); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get on_hand: %w", err)
	}
	return onHand, nil
}

// SetOnHand escritura condicional: solo actualiza si on_hand sigue valiendo expectedPrevious.
func (r *ProductStockRepo) SetOnHand(ctx context.Context, productID string, expectedPrevious, newValue int64) error {
	if newValue < 0 {
		return domain.NewValidationError("on_hand", "no puede ser negativo")
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET on_hand = $3, updated_at = now() WHERE id = $1 AND on_hand = $2`,
		productID, expectedPrevious, newValue,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewValidationError("on_hand", "no puede ser negativo")
		}
		return fmt.Errorf("set on_hand: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	// 0 filas: o el producto no existe o alguien cambió el saldo.
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// Get obtiene un producto por ID.
func (r *ProductStockRepo) Get(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetCostMetadata costo y umbral del catálogo (solo lectura).
func (r *ProductStockRepo) GetCostMetadata(ctx context.Context, productID string) (*entity.CostMetadata, error) {
	meta := entity.CostMetadata{ProductID: productID}
	err := r.q.QueryRow(ctx,
		`SELECT cost_cny, low_stock_threshold FROM products WHERE id = $1`, productID,
	).Scan(&meta.UnitCost, &meta.LowStockThreshold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get cost metadata: %w", err)
	}
	return &meta, nil
}

// List lista productos por ID con paginación.
func (r *ProductStockRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListLowStock productos en o bajo el umbral, mayor déficit primero.
func (r *ProductStockRepo) ListLowStock(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE on_hand <= low_stock_threshold
		ORDER BY (low_stock_threshold - on_hand) DESC, id
		LIMIT $1 OFFSET $2`, limit, offset)
}

// CountLowStock total de productos en o bajo el umbral.
func (r *ProductStockRepo) CountLowStock(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products WHERE on_hand <= low_stock_threshold`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

// Create registra un producto del catálogo. El stock inicial siempre es 0.
func (r *ProductStockRepo) Create(ctx context.Context, p *entity.Product) error {
	p.OnHand = 0
	p.UpdatedAt = nowUTC()
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, sku, name, on_hand, low_stock_threshold, cost_cny, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6)`,
		p.ID, p.SKU, p.Name, p.LowStockThreshold, p.CostCNY, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("producto %s: %w", p.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductStockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.OnHand, &p.LowStockThreshold, &p.CostCNY, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
