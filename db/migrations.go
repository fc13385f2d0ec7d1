package database

import (
	"context"
	"fmt"
	"log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGSERIAL PRIMARY KEY,
		username      VARCHAR(100) NOT NULL UNIQUE,
		email         VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id   SERIAL PRIMARY KEY,
		category_name VARCHAR(50) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		transaction_id   BIGSERIAL PRIMARY KEY,
		amount           NUMERIC(10, 2) NOT NULL CHECK (amount > 0),
		transaction_date DATE NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		type             VARCHAR(10) NOT NULL CHECK (type IN ('income', 'expense')),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		user_id          BIGINT NOT NULL REFERENCES users (user_id),
		category_id      INT NOT NULL REFERENCES categories (category_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_transaction_date ON transactions (transaction_date)`,
}

// Migrate creates any missing table or index. It is safe to run on every start.
func (s *DBService) Migrate(ctx context.Context) error {
	for i, statement := range schema {
		if _, err := s.DB.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	log.Println("Database schema is up to date")
	return nil
}
