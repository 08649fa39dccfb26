// Package memory implementa los puertos de stock en memoria (desarrollo y pruebas).
// Las transacciones se simulan con un bloqueo global más snapshot y rollback ante error.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
)

// Store estado compartido de productos, ledger y libro de caja.
type Store struct {
	mu        sync.RWMutex
	ids       *idgen.Generator
	products  map[string]entity.Product
	movements map[string][]*entity.StockMovement // por producto, orden de inserción
	cashbook  map[string][]*entity.CashbookEntry // por movimiento
}

// NewStore crea un almacén vacío.
func NewStore(ids *idgen.Generator) *Store {
	return &Store{
		ids:       ids,
		products:  make(map[string]entity.Product),
		movements: make(map[string][]*entity.StockMovement),
		cashbook:  make(map[string][]*entity.CashbookEntry),
	}
}

// Products repositorio de catálogo/saldo fuera de transacción.
func (s *Store) Products() *ProductStockRepo { return &ProductStockRepo{view{s: s}} }

// Movements ledger fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{view{s: s}} }

// Cashbook asientos del libro de caja.
func (s *Store) Cashbook() *CashbookRepo { return &CashbookRepo{s: s} }

var _ inventory.TxRunner = (*Store)(nil)

// Run ejecuta fn con el bloqueo de escritura tomado. Si fn falla se restaura el snapshot.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.ProductStockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	v := view{s: s, inTx: true}
	if err := fn(&ProductStockRepo{v}, &StockMovementRepo{v}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products  map[string]entity.Product
	movements map[string][]*entity.StockMovement
}

func (s *Store) snapshot() snapshot {
	products := make(map[string]entity.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	movements := make(map[string][]*entity.StockMovement, len(s.movements))
	for k, v := range s.movements {
		movements[k] = v[:len(v):len(v)]
	}
	return snapshot{products: products, movements: movements}
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.movements = snap.movements
}

// view decide si cada operación toma el bloqueo (fuera de tx) o ya lo tiene Run (dentro de tx).
type view struct {
	s    *Store
	inTx bool
}

func (v view) rlock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.RLock()
	return v.s.mu.RUnlock
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// =============================================================================
// PRODUCTOS
// =============================================================================

var _ repository.ProductStockRepository = (*ProductStockRepo)(nil)

// ProductStockRepo catálogo y saldo en memoria.
type ProductStockRepo struct{ view }

func (r *ProductStockRepo) GetOnHand(ctx context.Context, productID string) (int64, error) {
	defer r.rlock()()
	p, ok := r.s.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.OnHand, nil
}

func (r *ProductStockRepo) SetOnHand(ctx context.Context, productID string, expectedPrevious, newValue int64) error {
	if newValue < 0 {
		return domain.NewValidationError("on_hand", "no puede ser negativo")
	}
	defer r.lock()()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.OnHand != expectedPrevious {
		return domain.ErrConflict
	}
	p.OnHand = newValue
	p.UpdatedAt = now()
	r.s.products[productID] = p
	return nil
}

func (r *ProductStockRepo) Get(ctx context.Context, productID string) (*entity.Product, error) {
	defer r.rlock()()
	p, ok := r.s.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *ProductStockRepo) GetCostMetadata(ctx context.Context, productID string) (*entity.CostMetadata, error) {
	defer r.rlock()()
	p, ok := r.s.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entity.CostMetadata{ProductID: p.ID, UnitCost: p.CostCNY, LowStockThreshold: p.LowStockThreshold}, nil
}

func (r *ProductStockRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.rlock()()
	list := r.collect(func(*entity.Product) bool { return true })
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, limit, offset), nil
}

func (r *ProductStockRepo) ListLowStock(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.rlock()()
	list := r.collect((*entity.Product).IsLowStock)
	sort.Slice(list, func(i, j int) bool {
		di := list[i].LowStockThreshold - list[i].OnHand
		dj := list[j].LowStockThreshold - list[j].OnHand
		if di != dj {
			return di > dj
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

func (r *ProductStockRepo) CountLowStock(ctx context.Context) (int, error) {
	defer r.rlock()()
	return len(r.collect((*entity.Product).IsLowStock)), nil
}

func (r *ProductStockRepo) Create(ctx context.Context, p *entity.Product) error {
	if p.ID == "" {
		return domain.NewValidationError("id", "requerido")
	}
	defer r.lock()()
	if _, exists := r.s.products[p.ID]; exists {
		return domain.ErrConflict
	}
	p.OnHand = 0
	p.UpdatedAt = now()
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductStockRepo) collect(keep func(*entity.Product) bool) []*entity.Product {
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		if keep(&p) {
			list = append(list, &p)
		}
	}
	return list
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

// =============================================================================
// LEDGER
// =============================================================================

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger en memoria. Solo inserción.
type StockMovementRepo struct{ view }

func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) (*entity.StockMovement, error) {
	defer r.lock()()
	if _, ok := r.s.products[m.ProductID]; !ok {
		return nil, domain.ErrNotFound
	}
	stored := *m
	if stored.ID == "" {
		stored.ID = r.s.ids.Next()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now()
	}
	r.s.movements[stored.ProductID] = append(r.s.movements[stored.ProductID], &stored)
	out := stored
	return &out, nil
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.rlock()()
	return page(r.newestFirst(productID), limit, offset), nil
}

func (r *StockMovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	defer r.rlock()()
	return len(r.s.movements[productID]), nil
}

func (r *StockMovementRepo) Latest(ctx context.Context, productID string) (*entity.StockMovement, error) {
	defer r.rlock()()
	list := r.newestFirst(productID)
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// newestFirst copia los movimientos en orden created_at DESC, id DESC.
func (r *StockMovementRepo) newestFirst(productID string) []*entity.StockMovement {
	src := r.s.movements[productID]
	list := make([]*entity.StockMovement, len(src))
	for i, m := range src {
		c := *m
		list[i] = &c
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return idLess(list[j].ID, list[i].ID)
	})
	return list
}

// idLess compara IDs snowflake decimales (misma longitud salvo al inicio de la época).
func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// =============================================================================
// LIBRO DE CAJA
// =============================================================================

var _ repository.CashbookRepository = (*CashbookRepo)(nil)

// CashbookRepo asientos del libro de caja en memoria.
type CashbookRepo struct{ s *Store }

func (r *CashbookRepo) Create(ctx context.Context, e *entity.CashbookEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *e
	r.s.cashbook[e.MovementID] = append(r.s.cashbook[e.MovementID], &c)
	return nil
}

func (r *CashbookRepo) ListByMovement(ctx context.Context, movementID string) ([]*entity.CashbookEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	src := r.s.cashbook[movementID]
	list := make([]*entity.CashbookEntry, len(src))
	for i, e := range src {
		c := *e
		list[i] = &c
	}
	return list, nil
}
