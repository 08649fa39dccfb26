package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/stock-ledger/internal/application/cashbook"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/backend"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/internal/interfaces/jobs"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("cashbook_mode", cfg.Cashbook.Mode).
		Msg("iniciando aplicación")

	ids, err := idgen.New(cfg.Inventory.NodeID)
	if err != nil {
		log.Fatal().Err(err).Msg("generador de IDs")
	}

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.DB, ids)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacenamiento")
	}
	defer store.Close()

	// Puente al libro de caja según CASHBOOK_MODE.
	var bridge inventory.CashbookBridge
	var asyncBridge *cashbook.AsyncBridge
	switch cfg.Cashbook.Mode {
	case config.CashbookModeOff:
		bridge = cashbook.Noop{}
	case config.CashbookModeAsync:
		asyncBridge, err = cashbook.NewAsyncBridge(cashbook.NewBridge(store.Cashbook), cfg.Cashbook.Workers, cfg.Cashbook.Timeout, log)
		if err != nil {
			log.Fatal().Err(err).Msg("pool del libro de caja")
		}
		bridge = asyncBridge
	default:
		bridge = cashbook.NewBridge(store.Cashbook)
	}

	engine := inventory.NewReconciliationEngine(store.TxRunner, store.Products, bridge, log, inventory.EngineConfig{
		MaxAttempts:     cfg.Inventory.MaxAttempts,
		RetryBackoff:    cfg.Inventory.RetryBackoff,
		CashbookTimeout: cfg.Cashbook.Timeout,
	})
	queryUC := inventory.NewStockQueryUseCase(store.Products, store.Movements)
	lowStockUC := inventory.NewLowStockUseCase(store.Products)
	auditUC := inventory.NewAuditUseCase(store.Products, store.Movements, inventory.AuditConfig{
		Window: cfg.Inventory.AuditWindow,
	})

	var scheduler *jobs.Scheduler
	if cfg.Inventory.AuditCron != "" {
		scheduler, err = jobs.NewScheduler(cfg.Inventory.AuditCron, auditUC, 0, log)
		if err != nil {
			log.Fatal().Err(err).Msg("programar auditoría")
		}
		scheduler.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    engine,
		Query:     queryUC,
		LowStock:  lowStockUC,
		Audit:     auditUC,
		Localizer: httpRouter.NewLocalizer(cfg.App.Locale),
		Logger:    log,
		JWTSecret: cfg.JWT.Secret,
		AppName:   cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	// Los asientos encolados se escriben antes de cerrar la base.
	if asyncBridge != nil {
		asyncBridge.Close()
	}

	log.Info().Msg("aplicación detenida")
}
