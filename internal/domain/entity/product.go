package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es la vista del catálogo que necesita el motor de stock.
// SKU y Name pertenecen al catálogo y solo se muestran; OnHand lo modifica únicamente el motor de conciliación.
type Product struct {
	ID                string
	SKU               string
	Name              string
	OnHand            int64           // nunca negativo
	LowStockThreshold int64           // informativo
	CostCNY           decimal.Decimal // costo unitario de referencia (anotación de movimientos)
	UpdatedAt         time.Time
}

// IsLowStock indica si el stock está en o por debajo del umbral.
func (p *Product) IsLowStock() bool {
	return p.OnHand <= p.LowStockThreshold
}

// CostMetadata datos de costo que expone el catálogo (solo lectura).
type CostMetadata struct {
	ProductID         string
	UnitCost          decimal.Decimal
	LowStockThreshold int64
}
