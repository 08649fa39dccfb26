package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del asiento en el libro de caja.
const (
	CashbookExpense = "expense"
	CashbookIncome  = "income"
)

// Categorías generadas desde movimientos de stock.
const (
	CashbookCategoryPurchase = "inventory_purchase"
	CashbookCategoryLoss     = "inventory_loss"
	CashbookCategoryRecovery = "inventory_recovery"
)

// CashbookEntry línea del libro de caja derivada de un movimiento de stock.
type CashbookEntry struct {
	ID          string
	MovementID  string
	ProductID   string
	Direction   string // expense | income
	Category    string
	Amount      decimal.Decimal // siempre >= 0; la dirección da el signo
	Currency    string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}
