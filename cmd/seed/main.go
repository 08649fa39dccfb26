// Comando seed: crea productos de demostración y registra su stock inicial como movimientos de entrada.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/backend"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/idgen"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

const seedActor = "seed"

type seedProduct struct {
	sku       string
	name      string
	threshold int64
	costCNY   string
	opening   int64
}

var demoCatalog = []seedProduct{
	{sku: "KR-SNK-001", name: "김 스낵 오리지널 / 海苔脆片原味", threshold: 20, costCNY: "4.50", opening: 120},
	{sku: "KR-SNK-002", name: "김 스낵 매운맛 / 海苔脆片辣味", threshold: 20, costCNY: "4.80", opening: 15},
	{sku: "KR-RMN-010", name: "라면 5입 / 拉面五连包", threshold: 30, costCNY: "18.00", opening: 60},
	{sku: "KR-TEA-100", name: "유자차 1kg / 柚子茶1kg", threshold: 10, costCNY: "32.00", opening: 8},
	{sku: "KR-KIM-200", name: "포기김치 500g / 泡菜500g", threshold: 12, costCNY: "15.50", opening: 0},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ids, err := idgen.New(cfg.Inventory.NodeID)
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.DB, ids)
	if err != nil {
		return err
	}
	defer store.Close()

	// Stock inicial sin asientos de caja: no es una compra.
	engine := inventory.NewReconciliationEngine(store.TxRunner, store.Products, nil, log, inventory.EngineConfig{
		MaxAttempts:  cfg.Inventory.MaxAttempts,
		RetryBackoff: cfg.Inventory.RetryBackoff,
	})

	for _, sp := range demoCatalog {
		p := &entity.Product{
			ID:                uuid.NewSHA1(uuid.NameSpaceOID, []byte(sp.sku)).String(), // estable entre ejecuciones
			SKU:               sp.sku,
			Name:              sp.name,
			LowStockThreshold: sp.threshold,
			CostCNY:           decimal.RequireFromString(sp.costCNY),
		}
		if err := store.Products.Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				log.Warn().Str("sku", sp.sku).Msg("producto ya existe, se omite")
				continue
			}
			return fmt.Errorf("crear %s: %w", sp.sku, err)
		}
		if sp.opening == 0 {
			log.Info().Str("product_id", p.ID).Str("sku", sp.sku).Msg("producto creado sin stock")
			continue
		}
		res, err := engine.Apply(ctx, inventory.ApplyInput{
			ProductID:     p.ID,
			Type:          entity.MovementInbound,
			QuantityDelta: sp.opening,
			Reason:        "opening_balance",
			Note:          "stock inicial",
			SkipCashbook:  true,
			ActorID:       seedActor,
		})
		if err != nil {
			return fmt.Errorf("stock inicial %s: %w", sp.sku, err)
		}
		log.Info().
			Str("product_id", p.ID).
			Str("sku", sp.sku).
			Int64("on_hand", res.Movement.BalanceAfter).
			Bool("low_stock", res.LowStock).
			Msg("producto creado")
	}

	// Token de desarrollo para probar la API local; en producción los emite el servicio de identidad.
	if cfg.JWT.Secret != "" && cfg.App.Env == "development" {
		tok, err := jwt.Generate(cfg.JWT.Secret, seedActor, "admin", cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			return fmt.Errorf("token de desarrollo: %w", err)
		}
		fmt.Println("Authorization: Bearer " + tok)
	}
	return nil
}
