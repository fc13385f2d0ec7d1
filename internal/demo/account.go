package demo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	"github.com/sebuszqo/MyFiance/internal/user"
	"github.com/shopspring/decimal"
)

var ErrDemoUserMissing = errors.New("demo account does not exist yet")

// SeedTransactions is the history every demo session starts from.
func SeedTransactions() []domain.TransactionFields {
	return []domain.TransactionFields{
		{
			Amount:      decimal.New(250000, -2),
			Date:        time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
			Description: "Salario mensual",
			CategoryID:  1,
			Type:        domain.TransactionTypeIncome,
		},
		{
			Amount:      decimal.New(8540, -2),
			Date:        time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC),
			Description: "Compra en el supermercado",
			CategoryID:  3,
			Type:        domain.TransactionTypeExpense,
		},
		{
			Amount:      decimal.New(75000, -2),
			Date:        time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC),
			Description: "Alquiler",
			CategoryID:  4,
			Type:        domain.TransactionTypeExpense,
		},
	}
}

// Account is the self-provisioning demo user. Plugged into login as an
// auth.LoginHook it recreates the account when needed and resets its
// transactions on every successful demo login.
type Account struct {
	email        string
	password     string
	users        user.Service
	transactions domain.TransactionRepository
}

func NewAccount(email, password string, users user.Service, transactions domain.TransactionRepository) *Account {
	return &Account{
		email:        user.NormalizeEmail(email),
		password:     password,
		users:        users,
		transactions: transactions,
	}
}

func (a *Account) IsDemo(email string) bool {
	return a.email != "" && user.NormalizeEmail(email) == a.email
}

// BeforeLogin makes sure the demo account exists and accepts the fixed password.
func (a *Account) BeforeLogin(ctx context.Context, email string) error {
	if !a.IsDemo(email) {
		return nil
	}
	if _, err := a.users.EnsurePassword(ctx, a.email, a.password); err != nil {
		return fmt.Errorf("bootstrapping demo account: %w", err)
	}
	return nil
}

func (a *Account) AfterLogin(ctx context.Context, u *user.User) error {
	if !a.IsDemo(u.Email) {
		return nil
	}
	return a.Reset(ctx, u.ID)
}

// Reset replaces every transaction of userID with the seed set in one
// database transaction.
func (a *Account) Reset(ctx context.Context, userID int64) error {
	if err := a.transactions.ReplaceForUser(ctx, userID, SeedTransactions()); err != nil {
		return fmt.Errorf("resetting demo transactions: %w", err)
	}
	log.Printf("[Demo] reset transactions for user %d", userID)
	return nil
}

// Bootstrap ensures the account and resets it, the same as a demo login.
func (a *Account) Bootstrap(ctx context.Context) (*user.User, error) {
	u, err := a.users.EnsurePassword(ctx, a.email, a.password)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping demo account: %w", err)
	}
	if err := a.Reset(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// ResetExisting resets the demo account only if it has been created already.
func (a *Account) ResetExisting(ctx context.Context) error {
	u, err := a.users.GetUserByEmail(ctx, a.email)
	if errors.Is(err, user.ErrUserNotFound) {
		return ErrDemoUserMissing
	}
	if err != nil {
		return err
	}
	return a.Reset(ctx, u.ID)
}
