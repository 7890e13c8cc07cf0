package db

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// schema is idempotent — every statement is IF NOT EXISTS, so Migrate can run
// on every boot.
//
// scan_logs.product_id is ON DELETE CASCADE: deleting a product takes its
// scan history with it, which is the one place bulk deletion is allowed to
// cascade. Stores are never hard-deleted, so no cascade is defined for them.
const schema = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS stores (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	name TEXT NOT NULL,
	slug TEXT UNIQUE NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	contact_person TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	subscription_end DATE,
	logo_url TEXT NOT NULL DEFAULT '',
	primary_color TEXT NOT NULL DEFAULT '#4f46e5',
	background_url TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT 'TRY',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	store_id UUID REFERENCES stores(id),
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	store_id UUID NOT NULL REFERENCES stores(id),
	barcode TEXT NOT NULL,
	name TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	currency TEXT NOT NULL DEFAULT 'TRY',
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (store_id, barcode)
);

CREATE TABLE IF NOT EXISTS scan_logs (
	id BIGSERIAL PRIMARY KEY,
	store_id UUID NOT NULL REFERENCES stores(id),
	product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scan_logs_store_created
	ON scan_logs (store_id, created_at DESC);
`

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SeedSuperadmin inserts the console account on first boot. A no-op when the
// email already exists, so booting twice never duplicates or resets it.
func (db *DB) SeedSuperadmin(ctx context.Context, email, password string) error {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check superadmin: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash superadmin password: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO users (store_id, email, password_hash, role) VALUES (NULL, $1, $2, 'superadmin')`,
		email, string(hash),
	)
	if err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}

	db.logger.Info("seeded superadmin account")
	return nil
}
