// Package jobs tareas programadas del servicio.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Auditor ejecuta la conciliación on_hand contra el ledger.
type Auditor interface {
	Run(ctx context.Context) (*dto.AuditReportDTO, error)
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler programa la auditoría periódica del ledger.
type Scheduler struct {
	sched   *cron.Cron
	auditor Auditor
	log     *logger.Logger
	timeout time.Duration
}

// NewScheduler registra la auditoría con la expresión cron expr (ej. "@every 1h", "0 30 3 * * *").
func NewScheduler(expr string, auditor Auditor, timeout time.Duration, log *logger.Logger) (*Scheduler, error) {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	s := &Scheduler{
		sched:   cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		auditor: auditor,
		log:     log.Named("audit"),
		timeout: timeout,
	}
	if _, err := s.sched.AddFunc(expr, s.RunOnce); err != nil {
		return nil, fmt.Errorf("AUDIT_CRON inválido %q: %w", expr, err)
	}
	return s, nil
}

// Start arranca el planificador en segundo plano.
func (s *Scheduler) Start() { s.sched.Start() }

// Stop detiene el planificador y espera la ejecución en curso.
func (s *Scheduler) Stop() {
	<-s.sched.Stop().Done()
}

// RunOnce ejecuta una auditoría y registra cada discrepancia en nivel error.
func (s *Scheduler) RunOnce() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("auditoría abortada")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.auditor.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("auditoría fallida")
		return
	}
	for _, d := range report.Discrepancies {
		s.log.Error().
			Str("product_id", d.ProductID).
			Str("kind", d.Kind).
			Str("movement_id", d.MovementID).
			Int64("expected", d.Expected).
			Int64("actual", d.Actual).
			Msg("discrepancia en el ledger")
	}
	s.log.Info().
		Int("checked", report.Checked).
		Int("discrepancies", len(report.Discrepancies)).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("auditoría completada")
}
