// Package sqlite implementa los puertos de stock sobre SQLite (sqlx + go-sqlite3).
// Pensado para instalaciones de una sola tienda y para pruebas de integración sin PostgreSQL.
// Las escrituras se serializan con una única conexión abierta; la escritura condicional de on_hand
// sigue siendo la misma que en PostgreSQL.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id                  TEXT PRIMARY KEY,
	sku                 TEXT NOT NULL DEFAULT '',
	name                TEXT NOT NULL DEFAULT '',
	on_hand             INTEGER NOT NULL DEFAULT 0 CHECK (on_hand >= 0),
	low_stock_threshold INTEGER NOT NULL DEFAULT 0 CHECK (low_stock_threshold >= 0),
	cost_cny            TEXT NOT NULL DEFAULT '0',
	updated_at          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_movements (
	id                TEXT PRIMARY KEY,
	product_id        TEXT NOT NULL REFERENCES products(id),
	movement_type     TEXT NOT NULL CHECK (movement_type IN ('inbound', 'sale', 'adjustment')),
	quantity          INTEGER NOT NULL CHECK (quantity <> 0),
	previous_quantity INTEGER NOT NULL CHECK (previous_quantity >= 0),
	new_quantity      INTEGER NOT NULL CHECK (new_quantity >= 0),
	cost_per_unit     TEXT,
	reason            TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	skip_cashbook     INTEGER NOT NULL DEFAULT 0,
	created_by        TEXT NOT NULL,
	created_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created
	ON stock_movements (product_id, created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS cashbook_transactions (
	id          TEXT PRIMARY KEY,
	movement_id TEXT NOT NULL REFERENCES stock_movements(id),
	product_id  TEXT NOT NULL,
	direction   TEXT NOT NULL CHECK (direction IN ('expense', 'income')),
	category    TEXT NOT NULL,
	amount      TEXT NOT NULL,
	currency    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cashbook_transactions_movement ON cashbook_transactions (movement_id);
`

// Open abre (o crea) la base en path y aplica el esquema. Usar ":memory:" para una base efímera.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("crear directorio de la base: %w", err)
			}
		}
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Una sola conexión: SQLite admite un escritor y ":memory:" vive por conexión.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrar esquema sqlite: %w", err)
	}
	return db, nil
}

// nowMicros instante actual en microsegundos UTC; las columnas de tiempo son enteros para ordenar sin ambigüedad.
func nowMicros() int64 {
	return time.Now().UTC().UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var sqErr sqlite3.Error
	return errors.As(err, &sqErr) && sqErr.ExtendedCode == code
}
