package domain

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sebuszqo/MyFiance/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

const (
	DateLayout           = "2006-01-02"
	MaxDescriptionLength = 500
	amountScale          = 2

	// Exponent window accepted before any arithmetic on an amount. Rescaling
	// costs grow with the exponent, so out-of-range values are rejected first.
	minAmountExponent = -amountScale - 8
	maxAmountExponent = 8
)

// maxAmount is the first value that no longer fits NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

func IsValidTransactionType(t string) bool {
	return t == string(TransactionTypeIncome) || t == string(TransactionTypeExpense)
}

type Transaction struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Type        TransactionType
	Category    Category
	CreatedAt   time.Time
}

// TransactionFields is every mutable field of a transaction. Updates replace
// all of them.
type TransactionFields struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	CategoryID  int
	Type        TransactionType
}

func (f TransactionFields) Validate() error {
	if !f.Amount.IsPositive() {
		return errors.NewValidationError("Amount must be greater than zero")
	}
	switch exp := f.Amount.Exponent(); {
	case exp < minAmountExponent:
		return errors.NewValidationError("Amount must have at most 2 decimal places")
	case exp > maxAmountExponent:
		return errors.NewValidationError(fmt.Sprintf("Amount must be less than %s", maxAmount.String()))
	}
	if !f.Amount.Equal(f.Amount.Truncate(amountScale)) {
		return errors.NewValidationError("Amount must have at most 2 decimal places")
	}
	if f.Amount.GreaterThanOrEqual(maxAmount) {
		return errors.NewValidationError(fmt.Sprintf("Amount must be less than %s", maxAmount.String()))
	}
	if f.Date.IsZero() {
		return errors.NewValidationError("Transaction date is required")
	}
	if !IsValidTransactionType(string(f.Type)) {
		return errors.NewValidationError("Type must be 'income' or 'expense'")
	}
	if utf8.RuneCountInString(f.Description) > MaxDescriptionLength {
		return errors.NewValidationError(fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	}
	if f.CategoryID <= 0 {
		return errors.ErrInvalidCategory
	}
	return nil
}

// Signed returns the amount as it contributes to a balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionRepository stores transactions. FindByID, Update and Delete
// return errors.ErrTransactionNotFound for an unknown id.
type TransactionRepository interface {
	FindByUser(ctx context.Context, userID int64) ([]Transaction, error)
	FindByID(ctx context.Context, transactionID int64) (*Transaction, error)
	Create(ctx context.Context, userID int64, fields TransactionFields) (*Transaction, error)
	Update(ctx context.Context, transactionID int64, fields TransactionFields) (*Transaction, error)
	Delete(ctx context.Context, transactionID int64) error
	// ReplaceForUser atomically removes every transaction of userID and inserts fields.
	ReplaceForUser(ctx context.Context, userID int64, fields []TransactionFields) error
}
