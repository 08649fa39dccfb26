package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Usar con errors.Is.
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrConcurrencyExhausted = errors.New("reintentos agotados por concurrencia")
	ErrPersistence          = errors.New("fallo de persistencia")
	ErrCashbookBridge       = errors.New("no se registró el asiento en el libro de caja")
)

// Categorías de error expuestas a los clientes (discriminador "kind").
const (
	KindValidation           = "validation"
	KindNotFound             = "not_found"
	KindInsufficientStock    = "insufficient_stock"
	KindConcurrencyExhausted = "concurrency_exhausted"
	KindPersistence          = "persistence"
	KindUnauthorized         = "unauthorized"
	KindForbidden            = "forbidden"
	KindCashbookBridge       = "cashbook_bridge"
	KindInternal             = "internal"
)

// ValidationError detalla qué campo de la solicitud incumple la política.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError indica que una venta dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductID string
	OnHand    int64
	Requested int64 // unidades solicitadas (valor absoluto)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.ProductID, e.OnHand, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConcurrencyExhaustedError se devuelve cuando todos los intentos chocaron con otra escritura.
type ConcurrencyExhaustedError struct {
	ProductID string
	Attempts  int
}

func (e *ConcurrencyExhaustedError) Error() string {
	return fmt.Sprintf("producto %s: %d intentos con conflicto de concurrencia", e.ProductID, e.Attempts)
}

func (e *ConcurrencyExhaustedError) Unwrap() error { return ErrConcurrencyExhausted }

// IsRetryable indica si el cliente puede reintentar la misma operación sin cambiar la entrada.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyExhausted) || errors.Is(err, ErrConflict)
}

// IsBusinessError indica si err es un error de dominio ya clasificado
// (no debe envolverse como fallo de persistencia).
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrConcurrencyExhausted) ||
		errors.Is(err, ErrPersistence)
}

// Kind mapea un error a su categoría pública.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrConcurrencyExhausted), errors.Is(err, ErrConflict):
		return KindConcurrencyExhausted
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrCashbookBridge):
		return KindCashbookBridge
	default:
		return KindInternal
	}
}
