package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		slug        TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		base_price  NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id              TEXT PRIMARY KEY,
		status          TEXT NOT NULL,
		items           JSONB NOT NULL DEFAULT '[]',
		email           TEXT NOT NULL,
		name            TEXT NOT NULL,
		phone           TEXT NOT NULL DEFAULT '',
		dni             TEXT NOT NULL DEFAULT '',
		address         TEXT NOT NULL DEFAULT '',
		postal_code     TEXT NOT NULL DEFAULT '',
		province        TEXT NOT NULL DEFAULT '',
		shipping_method TEXT NOT NULL,
		payment_method  TEXT NOT NULL,
		subtotal        NUMERIC(12,2) NOT NULL,
		shipping_cost   NUMERIC(12,2) NOT NULL DEFAULT 0,
		discount        NUMERIC(12,2) NOT NULL DEFAULT 0,
		coupon_code     TEXT NOT NULL DEFAULT '',
		total           NUMERIC(12,2) NOT NULL,
		currency        TEXT NOT NULL DEFAULT 'ARS',
		notes           TEXT NOT NULL DEFAULT '',
		preference_id   TEXT NOT NULL DEFAULT '',
		payment_status  TEXT NOT NULL DEFAULT '',
		notified        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_email_coupon_idx ON orders (lower(email), upper(coupon_code)) WHERE status = 'awaiting_payment'`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id                  TEXT PRIMARY KEY,
		code                TEXT NOT NULL UNIQUE,
		discount_type       TEXT NOT NULL,
		discount_value      NUMERIC(12,2) NOT NULL,
		min_purchase_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		max_uses            INTEGER,
		current_uses        INTEGER NOT NULL DEFAULT 0,
		expires_at          TIMESTAMPTZ,
		active              BOOLEAN NOT NULL DEFAULT TRUE,
		description         TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS coupon_usages (
		id               TEXT PRIMARY KEY,
		coupon_id        TEXT NOT NULL REFERENCES coupons(id),
		order_id         TEXT NOT NULL,
		email            TEXT NOT NULL,
		discount_applied NUMERIC(12,2) NOT NULL,
		order_total      NUMERIC(12,2) NOT NULL,
		used_at          TIMESTAMPTZ NOT NULL,
		UNIQUE (coupon_id, order_id)
	)`,
}

// Migrate creates the checkout tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	logging.Info("Checkout schema migrated", logging.Fields{"statements": len(schemaStatements)})
	return nil
}
