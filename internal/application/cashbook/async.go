package cashbook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// AsyncBridge envía los asientos a un pool de workers (fire-and-forget).
// El stock nunca espera al libro de caja; los fallos solo quedan en el log.
type AsyncBridge struct {
	next    Recorder
	pool    *ants.Pool
	log     *logger.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// ErrClosed el puente ya no acepta asientos.
var ErrClosed = errors.New("libro de caja asíncrono cerrado")

// NewAsyncBridge crea el pool. Con el pool lleno Record devuelve error en lugar de bloquear.
func NewAsyncBridge(next Recorder, workers int, timeout time.Duration, log *logger.Logger) (*AsyncBridge, error) {
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("crear pool de libro de caja: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &AsyncBridge{next: next, pool: pool, log: log.Named("cashbook"), timeout: timeout}, nil
}

// Record encola el asiento y retorna de inmediato.
func (a *AsyncBridge) Record(_ context.Context, m *entity.StockMovement) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.wg.Add(1)
	a.mu.Unlock()

	err := a.pool.Submit(func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Record(ctx, m); err != nil {
			a.log.Warn().Err(err).Str("movement_id", m.ID).Str("product_id", m.ProductID).Msg("asiento de caja no registrado")
		}
	})
	if err != nil {
		a.wg.Done()
		return fmt.Errorf("encolar asiento de caja: %w", err)
	}
	return nil
}

// Close rechaza nuevos asientos, espera los encolados y libera el pool. Es idempotente.
func (a *AsyncBridge) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()
	a.wg.Wait()
	a.pool.Release()
}
