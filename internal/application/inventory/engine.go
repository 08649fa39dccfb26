package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// EngineConfig parámetros del motor.
type EngineConfig struct {
	MaxAttempts     int           // intentos ante domain.ErrConflict (por defecto 3)
	RetryBackoff    time.Duration // espera lineal entre intentos
	CashbookTimeout time.Duration // tiempo máximo de la llamada al libro de caja
}

// ReconciliationEngine es el único punto de entrada que modifica on_hand.
// Cada cambio de saldo queda emparejado con exactamente un movimiento en el ledger.
type ReconciliationEngine struct {
	txRunner TxRunner
	catalog  repository.ProductStockRepository
	cashbook CashbookBridge
	log      *logger.Logger
	cfg      EngineConfig
}

// NewReconciliationEngine construye el motor. cashbook puede ser nil (sin puente).
func NewReconciliationEngine(
	txRunner TxRunner,
	catalog repository.ProductStockRepository,
	cashbook CashbookBridge,
	log *logger.Logger,
	cfg EngineConfig,
) *ReconciliationEngine {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.CashbookTimeout <= 0 {
		cfg.CashbookTimeout = 2 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReconciliationEngine{
		txRunner: txRunner,
		catalog:  catalog,
		cashbook: cashbook,
		log:      log.Named("reconciliation"),
		cfg:      cfg,
	}
}

// ApplyInput solicitud de movimiento ya tipada.
type ApplyInput struct {
	ProductID     string
	Type          entity.MovementType
	QuantityDelta int64
	UnitCost      *decimal.Decimal
	Note          string
	Reason        string
	SkipCashbook  bool
	ActorID       string
}

// Warning aviso no fatal asociado a un movimiento confirmado.
type Warning struct {
	Kind string
	Err  error
}

// ApplyResult movimiento persistido más la información que el cliente debe conocer.
type ApplyResult struct {
	Movement       *entity.StockMovement
	RequestedDelta int64
	AppliedDelta   int64
	Clamped        bool
	LowStock       bool
	Warnings       []Warning
}

// Apply registra un movimiento:
//  1. lee on_hand (balanceBefore) dentro de una transacción,
//  2. valida según el tipo,
//  3. calcula balanceAfter = max(0, before + delta),
//  4. escritura condicional SetOnHand(before, after); ante conflicto reintenta desde 1,
//  5. agrega el movimiento al ledger en la misma transacción,
//  6. tras el Commit, registra en el libro de caja si corresponde (best-effort).
func (e *ReconciliationEngine) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if in.ActorID == "" {
		return nil, domain.NewValidationError("actor", "requerido")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "no puede ser negativo")
	}
	if err := inventory.ValidateRequest(in.Type, in.QuantityDelta); err != nil {
		return nil, err
	}

	meta, err := e.catalog.GetCostMetadata(ctx, in.ProductID)
	if err != nil {
		return nil, classify("leer costo del producto", err)
	}
	unitCost := resolveUnitCost(in, meta)

	var mov *entity.StockMovement
	for attempt := 1; ; attempt++ {
		mov, err = e.attempt(ctx, in, unitCost)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		if attempt >= e.cfg.MaxAttempts {
			e.log.Warn().Str("product_id", in.ProductID).Int("attempts", attempt).Msg("reintentos agotados por concurrencia")
			return nil, &domain.ConcurrencyExhaustedError{ProductID: in.ProductID, Attempts: attempt}
		}
		e.log.Debug().Str("product_id", in.ProductID).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
		if err := sleepCtx(ctx, e.cfg.RetryBackoff*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}

	res := &ApplyResult{
		Movement:       mov,
		RequestedDelta: in.QuantityDelta,
		AppliedDelta:   mov.AppliedDelta(),
		Clamped:        mov.Clamped(),
		LowStock:       mov.BalanceAfter <= meta.LowStockThreshold,
	}
	if res.Clamped {
		// El ajuste pidió más de lo disponible: se aplicó menos de lo solicitado.
		e.log.Warn().
			Str("product_id", mov.ProductID).
			Str("movement_id", mov.ID).
			Int64("requested_delta", res.RequestedDelta).
			Int64("applied_delta", res.AppliedDelta).
			Msg("ajuste recortado en cero")
	}

	if e.shouldRecordCashbook(mov) {
		if err := e.recordCashbook(ctx, mov); err != nil {
			e.log.Warn().Err(err).Str("movement_id", mov.ID).Msg("libro de caja no registrado")
			res.Warnings = append(res.Warnings, Warning{Kind: domain.KindCashbookBridge, Err: err})
		}
	}
	return res, nil
}

// attempt ejecuta los pasos 1-5 en una sola transacción.
func (e *ReconciliationEngine) attempt(ctx context.Context, in ApplyInput, unitCost *decimal.Decimal) (*entity.StockMovement, error) {
	var stored *entity.StockMovement
	err := e.txRunner.Run(ctx, func(
		stockRepo repository.ProductStockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		before, err := stockRepo.GetOnHand(ctx, in.ProductID)
		if err != nil {
			return classify("leer stock", err)
		}
		if err := inventory.CheckAvailability(in.Type, in.ProductID, before, in.QuantityDelta); err != nil {
			return err
		}
		after := inventory.NextBalance(before, in.QuantityDelta)
		if err := stockRepo.SetOnHand(ctx, in.ProductID, before, after); err != nil {
			return classify("actualizar stock", err)
		}
		stored, err = movRepo.Append(ctx, &entity.StockMovement{
			ProductID:     in.ProductID,
			Type:          in.Type,
			QuantityDelta: in.QuantityDelta,
			BalanceBefore: before,
			BalanceAfter:  after,
			UnitCost:      unitCost,
			Reason:        in.Reason,
			Note:          in.Note,
			SkipCashbook:  in.SkipCashbook,
			CreatedBy:     in.ActorID,
		})
		if err != nil {
			return classify("registrar movimiento", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("transacción", err)
	}
	return stored, nil
}

func (e *ReconciliationEngine) shouldRecordCashbook(m *entity.StockMovement) bool {
	if e.cashbook == nil || m.SkipCashbook {
		return false
	}
	return m.Type == entity.MovementInbound || m.Type == entity.MovementAdjustment
}

// recordCashbook no depende de la cancelación del request: el stock ya está confirmado.
func (e *ReconciliationEngine) recordCashbook(ctx context.Context, m *entity.StockMovement) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.CashbookTimeout)
	defer cancel()
	if err := e.cashbook.Record(cctx, m); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCashbookBridge, err)
	}
	return nil
}

// resolveUnitCost: el costo explícito gana; entradas y ajustes toman el costo del catálogo; ventas sin costo.
func resolveUnitCost(in ApplyInput, meta *entity.CostMetadata) *decimal.Decimal {
	if in.UnitCost != nil {
		c := *in.UnitCost
		return &c
	}
	if in.Type == entity.MovementSale || meta == nil {
		return nil
	}
	c := meta.UnitCost
	return &c
}

// classify deja pasar los errores de dominio y convierte el resto en ErrPersistence.
func classify(op string, err error) error {
	if domain.IsBusinessError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
