// Package cashbook traduce movimientos de stock en asientos del libro de caja.
package cashbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Currency moneda de los costos del catálogo.
const Currency = "CNY"

// ErrSkipped el movimiento no genera asiento (venta o skip_cashbook).
var ErrSkipped = errors.New("movimiento sin asiento de caja")

// Recorder contrato mínimo que cumplen Bridge, AsyncBridge y Noop.
type Recorder interface {
	Record(ctx context.Context, movement *entity.StockMovement) error
}

// Bridge escribe un asiento por movimiento en el CashbookRepository.
type Bridge struct {
	repo repository.CashbookRepository
	now  func() time.Time
}

// NewBridge construye el puente síncrono.
func NewBridge(repo repository.CashbookRepository) *Bridge {
	return &Bridge{repo: repo, now: time.Now}
}

// Record crea la línea del libro de caja para el movimiento. Los movimientos sin asiento se ignoran.
func (b *Bridge) Record(ctx context.Context, m *entity.StockMovement) error {
	entry, err := EntryFor(m)
	if errors.Is(err, ErrSkipped) {
		return nil
	}
	if err != nil {
		return err
	}
	entry.ID = uuid.New().String()
	entry.CreatedAt = b.now().UTC()
	if err := b.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("crear asiento de caja: %w", err)
	}
	return nil
}

// EntryFor deriva el asiento:
//   - inbound: gasto inventory_purchase = delta * costo
//   - adjustment negativo: gasto inventory_loss; positivo: ingreso inventory_recovery,
//     importe = |delta aplicado| * costo (0 si no hay costo: asiento plano por categoría)
func EntryFor(m *entity.StockMovement) (*entity.CashbookEntry, error) {
	if m == nil || m.SkipCashbook {
		return nil, ErrSkipped
	}
	cost := decimal.Zero
	if m.UnitCost != nil {
		cost = *m.UnitCost
	}
	entry := &entity.CashbookEntry{
		MovementID: m.ID,
		ProductID:  m.ProductID,
		Currency:   Currency,
		CreatedBy:  m.CreatedBy,
	}
	switch m.Type {
	case entity.MovementInbound:
		entry.Direction = entity.CashbookExpense
		entry.Category = entity.CashbookCategoryPurchase
		entry.Amount = cost.Mul(decimal.NewFromInt(m.QuantityDelta))
	case entity.MovementAdjustment:
		applied := m.AppliedDelta()
		if applied == 0 {
			// Ajuste recortado sin efecto (stock ya en cero): no hay valor que registrar.
			return nil, ErrSkipped
		}
		if applied < 0 {
			entry.Direction = entity.CashbookExpense
			entry.Category = entity.CashbookCategoryLoss
			applied = -applied
		} else {
			entry.Direction = entity.CashbookIncome
			entry.Category = entity.CashbookCategoryRecovery
		}
		entry.Amount = cost.Mul(decimal.NewFromInt(applied))
	default:
		return nil, ErrSkipped
	}
	entry.Description = describe(m)
	return entry, nil
}

func describe(m *entity.StockMovement) string {
	s := fmt.Sprintf("%s %s %+d", m.Type, m.ProductID, m.AppliedDelta())
	if m.Reason != "" {
		s += " (" + m.Reason + ")"
	}
	return s
}

// Noop puente deshabilitado (CASHBOOK_MODE=off).
type Noop struct{}

// Record no hace nada.
func (Noop) Record(context.Context, *entity.StockMovement) error { return nil }
