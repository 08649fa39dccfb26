package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

// Tipos de discrepancia.
const (
	DiscrepancyOnHandMismatch = "on_hand_mismatch" // on_hand != balance_after del último movimiento
	DiscrepancyBrokenChain    = "broken_chain"     // balance_before != balance_after del movimiento anterior
	DiscrepancyBalanceFormula = "balance_formula"  // balance_after != max(0, before + delta)
	DiscrepancyNoHistory      = "no_history"       // on_hand > 0 sin movimientos
)

// AuditConfig parámetros de la auditoría.
type AuditConfig struct {
	Window      int // movimientos recientes por producto
	PageSize    int // productos por página
	Concurrency int // productos revisados en paralelo
}

// AuditUseCase concilia on_hand contra el ledger de movimientos.
type AuditUseCase struct {
	products  repository.ProductStockRepository
	movements repository.StockMovementRepository
	cfg       AuditConfig
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(products repository.ProductStockRepository, movements repository.StockMovementRepository, cfg AuditConfig) *AuditUseCase {
	if cfg.Window < 2 {
		cfg.Window = 50
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &AuditUseCase{products: products, movements: movements, cfg: cfg}
}

// Run recorre todos los productos y devuelve las discrepancias encontradas.
// La lectura no es transaccional: ante una diferencia se vuelve a leer una vez antes de reportarla,
// para no confundir un movimiento concurrente con una inconsistencia.
func (uc *AuditUseCase) Run(ctx context.Context) (*dto.AuditReportDTO, error) {
	report := &dto.AuditReportDTO{StartedAt: time.Now().UTC(), Discrepancies: []dto.DiscrepancyDTO{}}
	var mu sync.Mutex

	for offset := 0; ; offset += uc.cfg.PageSize {
		page, err := uc.products.List(ctx, uc.cfg.PageSize, offset)
		if err != nil {
			return nil, classify("listar productos", err)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(uc.cfg.Concurrency)
		for _, p := range page {
			productID := p.ID
			g.Go(func() error {
				found, err := uc.checkWithRetry(gctx, productID)
				if err != nil {
					return err
				}
				mu.Lock()
				report.Checked++
				report.Discrepancies = append(report.Discrepancies, found...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, classify("auditar producto", err)
		}
		if len(page) < uc.cfg.PageSize {
			break
		}
	}

	sort.SliceStable(report.Discrepancies, func(i, j int) bool {
		return report.Discrepancies[i].ProductID < report.Discrepancies[j].ProductID
	})
	report.FinishedAt = time.Now().UTC()
	return report, nil
}

func (uc *AuditUseCase) checkWithRetry(ctx context.Context, productID string) ([]dto.DiscrepancyDTO, error) {
	found, err := uc.CheckProduct(ctx, productID)
	if err != nil || len(found) == 0 {
		return found, err
	}
	return uc.CheckProduct(ctx, productID)
}

// CheckProduct revisa un producto: saldo actual contra el último movimiento y continuidad de la ventana reciente.
func (uc *AuditUseCase) CheckProduct(ctx context.Context, productID string) ([]dto.DiscrepancyDTO, error) {
	// Movimientos primero y luego el saldo: un movimiento concurrente se ve como diferencia, no se pierde.
	list, err := uc.movements.ListByProduct(ctx, productID, uc.cfg.Window, 0)
	if err != nil {
		return nil, err
	}
	onHand, err := uc.products.GetOnHand(ctx, productID)
	if err != nil {
		return nil, err
	}
	return Reconcile(productID, onHand, list), nil
}

// Reconcile compara on_hand con una ventana de movimientos ordenada del más reciente al más antiguo.
func Reconcile(productID string, onHand int64, newestFirst []*entity.StockMovement) []dto.DiscrepancyDTO {
	var out []dto.DiscrepancyDTO
	if len(newestFirst) == 0 {
		if onHand != 0 {
			out = append(out, dto.DiscrepancyDTO{ProductID: productID, Kind: DiscrepancyNoHistory, Expected: 0, Actual: onHand})
		}
		return out
	}
	if latest := newestFirst[0]; latest.BalanceAfter != onHand {
		out = append(out, dto.DiscrepancyDTO{
			ProductID: productID, Kind: DiscrepancyOnHandMismatch, MovementID: latest.ID,
			Expected: latest.BalanceAfter, Actual: onHand,
		})
	}
	for i, m := range newestFirst {
		if !inventory.IsContinuous(m) {
			out = append(out, dto.DiscrepancyDTO{
				ProductID: productID, Kind: DiscrepancyBalanceFormula, MovementID: m.ID,
				Expected: inventory.NextBalance(m.BalanceBefore, m.QuantityDelta), Actual: m.BalanceAfter,
			})
		}
		if i+1 < len(newestFirst) {
			prev := newestFirst[i+1]
			if prev.BalanceAfter != m.BalanceBefore {
				out = append(out, dto.DiscrepancyDTO{
					ProductID: productID, Kind: DiscrepancyBrokenChain, MovementID: m.ID,
					Expected: prev.BalanceAfter, Actual: m.BalanceBefore,
				})
			}
		}
	}
	return out
}
