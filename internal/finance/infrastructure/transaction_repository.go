package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	financeErrors "github.com/sebuszqo/MyFiance/internal/finance/errors"
)

const foreignKeyViolation = "23503"

const selectTransactionColumns = `
	t.transaction_id, t.user_id, t.amount, t.transaction_date, t.description, t.type, t.created_at,
	c.category_id, c.category_name`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var transactionType string
	if err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Date, &t.Description, &transactionType, &t.CreatedAt,
		&t.Category.ID, &t.Category.Name); err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(transactionType)
	return &t, nil
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectTransactionColumns+`
		FROM transactions t
		JOIN categories c ON c.category_id = t.category_id
		WHERE t.user_id = $1
		ORDER BY t.transaction_date DESC, t.transaction_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) FindByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectTransactionColumns+`
		FROM transactions t
		JOIN categories c ON c.category_id = t.category_id
		WHERE t.transaction_id = $1`, transactionID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrTransactionNotFound
	}
	return t, err
}

func (r *TransactionRepository) Create(ctx context.Context, userID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `WITH t AS (
			INSERT INTO transactions (amount, transaction_date, description, type, user_id, category_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT `+selectTransactionColumns+`
		FROM t JOIN categories c ON c.category_id = t.category_id`,
		fields.Amount, fields.Date, fields.Description, string(fields.Type), userID, fields.CategoryID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, transactionID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `WITH t AS (
			UPDATE transactions
			SET amount = $1, transaction_date = $2, description = $3, type = $4, category_id = $5
			WHERE transaction_id = $6
			RETURNING *
		)
		SELECT `+selectTransactionColumns+`
		FROM t JOIN categories c ON c.category_id = t.category_id`,
		fields.Amount, fields.Date, fields.Description, string(fields.Type), fields.CategoryID, transactionID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, mapWriteError(err)
	}
	return t, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) ReplaceForUser(ctx context.Context, userID int64, fields []domain.TransactionFields) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	// concurrent replacements for the same user queue on the owner row
	var locked int
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE user_id = $1 FOR NO KEY UPDATE`, userID).Scan(&locked); err != nil {
		return fmt.Errorf("locking user %d: %w", userID, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deleting transactions of user %d: %w", userID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(amount, transaction_date, description, type, user_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, f := range fields {
		if _, err = stmt.ExecContext(ctx, f.Amount, f.Date, f.Description, string(f.Type), userID, f.CategoryID); err != nil {
			return fmt.Errorf("inserting transaction %d: %w", i+1, mapWriteError(err))
		}
	}
	return nil
}

func safeRollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Error during transaction rollback: %v", err)
	}
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == "transactions_category_id_fkey" {
		return financeErrors.ErrInvalidCategory
	}
	return err
}
