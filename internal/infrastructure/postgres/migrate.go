package postgres

import (
	"context"
	"fmt"
)

// schema tablas del motor de stock. products.on_hand nunca negativo; stock_movements es solo inserción.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id                  TEXT PRIMARY KEY,
	sku                 TEXT NOT NULL DEFAULT '',
	name                TEXT NOT NULL DEFAULT '',
	on_hand             BIGINT NOT NULL DEFAULT 0 CHECK (on_hand >= 0),
	low_stock_threshold BIGINT NOT NULL DEFAULT 0 CHECK (low_stock_threshold >= 0),
	cost_cny            NUMERIC(18,4) NOT NULL DEFAULT 0,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stock_movements (
	id                TEXT PRIMARY KEY,
	product_id        TEXT NOT NULL REFERENCES products(id),
	movement_type     TEXT NOT NULL CHECK (movement_type IN ('inbound', 'sale', 'adjustment')),
	quantity          BIGINT NOT NULL CHECK (quantity <> 0),
	previous_quantity BIGINT NOT NULL CHECK (previous_quantity >= 0),
	new_quantity      BIGINT NOT NULL CHECK (new_quantity >= 0),
	cost_per_unit     NUMERIC(18,4),
	reason            TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	skip_cashbook     BOOLEAN NOT NULL DEFAULT false,
	created_by        TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created
	ON stock_movements (product_id, created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS cashbook_transactions (
	id          TEXT PRIMARY KEY,
	movement_id TEXT NOT NULL REFERENCES stock_movements(id),
	product_id  TEXT NOT NULL,
	direction   TEXT NOT NULL CHECK (direction IN ('expense', 'income')),
	category    TEXT NOT NULL,
	amount      NUMERIC(18,4) NOT NULL,
	currency    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cashbook_transactions_movement ON cashbook_transactions (movement_id);
`

// Migrate crea el esquema si no existe (idempotente).
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrar esquema: %w", err)
	}
	return nil
}
