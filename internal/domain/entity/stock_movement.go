package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo cerrado de movimiento de stock.
type MovementType string

// Tipos de movimiento. No es extensible por el cliente.
const (
	MovementInbound    MovementType = "inbound"    // entrada (compra, recepción)
	MovementSale       MovementType = "sale"       // salida por venta
	MovementAdjustment MovementType = "adjustment" // ajuste manual (pérdida / recuperación)
)

// MovementTypes lista los tipos válidos.
func MovementTypes() []MovementType {
	return []MovementType{MovementInbound, MovementSale, MovementAdjustment}
}

// ParseMovementType convierte el string del request en un MovementType válido.
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(strings.ToLower(strings.TrimSpace(s))); t {
	case MovementInbound, MovementSale, MovementAdjustment:
		return t, nil
	}
	return "", fmt.Errorf("tipo de movimiento desconocido: %q", s)
}

func (t MovementType) String() string { return string(t) }

// StockMovement registro inmutable de un cambio de stock.
// Se crea una sola vez (ReconciliationEngine.Apply) y nunca se modifica ni borra.
type StockMovement struct {
	ID            string
	ProductID     string
	Type          MovementType
	QuantityDelta int64 // delta solicitado: positivo entrada/recuperación, negativo venta/pérdida
	BalanceBefore int64
	BalanceAfter  int64 // max(0, BalanceBefore + QuantityDelta)
	UnitCost      *decimal.Decimal
	Reason        string
	Note          string
	SkipCashbook  bool
	CreatedBy     string
	CreatedAt     time.Time
}

// AppliedDelta es el cambio realmente aplicado al stock (difiere del solicitado si hubo recorte a cero).
func (m *StockMovement) AppliedDelta() int64 {
	return m.BalanceAfter - m.BalanceBefore
}

// Clamped indica si el ajuste se recortó en cero.
func (m *StockMovement) Clamped() bool {
	return m.AppliedDelta() != m.QuantityDelta
}
