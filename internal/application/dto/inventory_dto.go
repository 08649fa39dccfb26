package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAdjustmentRequest body para POST /api/inventory/movements.
// UnitCost es opcional; si falta se usa el costo del catálogo.
type StockAdjustmentRequest struct {
	ProductID    string           `json:"product_id"`
	Quantity     int64            `json:"quantity"` // con signo
	Type         string           `json:"type"`     // inbound | sale | adjustment
	Reason       string           `json:"reason,omitempty"`
	Note         string           `json:"note,omitempty"`
	SkipCashbook bool             `json:"skip_cashbook,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
}

// WarningDTO aviso no fatal: la operación de stock sí se completó.
type WarningDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StockAdjustmentResponse respuesta 201 del registro de movimiento.
type StockAdjustmentResponse struct {
	MovementID    string       `json:"movement_id"`
	ProductID     string       `json:"product_id"`
	BalanceBefore int64        `json:"balance_before"`
	BalanceAfter  int64        `json:"balance_after"`
	CreatedAt     time.Time    `json:"created_at"`
	AppliedDelta  int64        `json:"applied_delta"`
	Clamped       bool         `json:"clamped"`
	LowStock      bool         `json:"low_stock"`
	Warnings      []WarningDTO `json:"warnings,omitempty"`
}

// MovementDTO un movimiento del ledger.
type MovementDTO struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Type          string           `json:"movement_type"`
	Quantity      int64            `json:"quantity"`
	PreviousQty   int64            `json:"previous_quantity"`
	NewQty        int64            `json:"new_quantity"`
	CostPerUnit   *decimal.Decimal `json:"cost_per_unit,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	SkipCashbook  bool             `json:"skip_cashbook"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementListResponse página del ledger de un producto.
type MovementListResponse struct {
	Items []MovementDTO `json:"items"`
	Page  PageResponse  `json:"page"`
}

// StockResponse stock actual de un producto.
type StockResponse struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	OnHand            int64           `json:"on_hand"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	CostCNY           decimal.Decimal `json:"cost_cny"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LowStockSuggestionDTO producto en o bajo el umbral con la cantidad sugerida de reposición.
type LowStockSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	OnHand             int64           `json:"on_hand"`
	LowStockThreshold  int64           `json:"low_stock_threshold"`
	IdealStock         int64           `json:"ideal_stock"`          // ceil(umbral * 1.5)
	SuggestedOrderQty  int64           `json:"suggested_order_qty"`  // IdealStock - OnHand
	UnitCost           decimal.Decimal `json:"unit_cost"`            // cost_cny
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}

// DiscrepancyDTO inconsistencia detectada por la auditoría del ledger.
type DiscrepancyDTO struct {
	ProductID  string `json:"product_id"`
	Kind       string `json:"kind"`
	MovementID string `json:"movement_id,omitempty"`
	Expected   int64  `json:"expected"`
	Actual     int64  `json:"actual"`
}

// AuditReportDTO resultado de la auditoría.
type AuditReportDTO struct {
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	Checked       int              `json:"checked"`
	Discrepancies []DiscrepancyDTO `json:"discrepancies"`
}
