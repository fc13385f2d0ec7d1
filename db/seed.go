package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
)

// SeedCategories inserts categories with their fixed ids when the table is
// empty and leaves an already seeded table alone. It reports how many rows
// were inserted.
func (s *DBService) SeedCategories(ctx context.Context, categories []domain.Category) (inserted int, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("Error during transaction rollback: %v", rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			inserted = 0
		}
	}()

	// serialises concurrent seeders; the second one sees a populated table
	if _, err = tx.ExecContext(ctx, `LOCK TABLE categories IN EXCLUSIVE MODE`); err != nil {
		return 0, err
	}

	var count int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	for _, c := range categories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO categories (category_id, category_name) VALUES ($1, $2)`, c.ID, c.Name); err != nil {
			return 0, fmt.Errorf("inserting category %q: %w", c.Name, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('categories', 'category_id'),
		GREATEST((SELECT MAX(category_id) FROM categories), 1))`); err != nil {
		return 0, err
	}

	log.Printf("Seeded %d categories", len(categories))
	return len(categories), nil
}
