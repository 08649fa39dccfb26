package inventory

import (
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MaxQuantity cota del valor absoluto de un movimiento.
const MaxQuantity int64 = 1_000_000_000

// NextBalance aplica el delta y recorta en cero (servicio de dominio).
// NuevoStock = max(0, StockActual + Delta)
func NextBalance(before, delta int64) int64 {
	after := before + delta
	if after < 0 {
		return 0
	}
	return after
}

// ValidateRequest revisa las reglas que no dependen del stock actual.
//   - inbound: delta > 0
//   - sale: delta < 0
//   - adjustment: cualquier delta distinto de cero
//
// |delta| nunca supera MaxQuantity.
func ValidateRequest(t entity.MovementType, delta int64) error {
	if delta == 0 {
		return domain.NewValidationError("quantity", "no puede ser cero")
	}
	if delta > MaxQuantity || delta < -MaxQuantity {
		return domain.NewValidationError("quantity", "fuera de rango")
	}
	switch t {
	case entity.MovementInbound:
		if delta < 0 {
			return domain.NewValidationError("quantity", "una entrada debe ser positiva")
		}
	case entity.MovementSale:
		if delta > 0 {
			return domain.NewValidationError("quantity", "una venta debe ser negativa")
		}
	case entity.MovementAdjustment:
	default:
		return domain.NewValidationError("type", "tipo de movimiento desconocido")
	}
	return nil
}

// CheckAvailability aplica las guardas que dependen del stock leído (before >= 0):
// una venta nunca se recorta y ningún delta positivo desborda int64.
// Los ajustes negativos no fallan aquí; NextBalance los recorta en cero.
func CheckAvailability(t entity.MovementType, productID string, before, delta int64) error {
	if delta > 0 && before > math.MaxInt64-delta {
		return domain.NewValidationError("quantity", "el saldo resultante desborda")
	}
	if t == entity.MovementSale && delta < -before {
		requested := int64(math.MaxInt64)
		if delta != math.MinInt64 {
			requested = -delta
		}
		return &domain.InsufficientStockError{ProductID: productID, OnHand: before, Requested: requested}
	}
	return nil
}

// IsContinuous verifica la fórmula de saldo de un movimiento ya persistido.
func IsContinuous(m *entity.StockMovement) bool {
	return m.BalanceBefore >= 0 && m.BalanceAfter == NextBalance(m.BalanceBefore, m.QuantityDelta)
}
