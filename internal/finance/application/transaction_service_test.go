package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	financeErrors "github.com/sebuszqo/MyFiance/internal/finance/errors"
	"github.com/sebuszqo/MyFiance/internal/finance/infrastructure"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func newTestService() (*TransactionService, *infrastructure.MockTransactionRepository) {
	repo := infrastructure.NewMockTransactionRepository(domain.DefaultCategories)
	categories := &MockCategoryService{Categories: domain.DefaultCategories}
	return NewTransactionService(repo, categories), repo
}

func fields(amount, date string, categoryID int, transactionType domain.TransactionType) domain.TransactionFields {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return domain.TransactionFields{
		Amount:      decimal.RequireFromString(amount),
		Date:        d,
		Description: "test",
		CategoryID:  categoryID,
		Type:        transactionType,
	}
}

func TestCreateTransaction(t *testing.T) {
	service, _ := newTestService()

	created, err := service.CreateTransaction(context.Background(), alice, fields("12.50", "2025-07-03", 3, domain.TransactionTypeExpense))
	require.NoError(t, err)
	assert.Equal(t, alice, created.UserID)
	assert.Equal(t, "Gasto - Alimentos", created.Category.Name)
	assert.NotZero(t, created.ID)
}

func TestCreateTransaction_RejectsInvalidFieldsBeforePersisting(t *testing.T) {
	service, repo := newTestService()

	_, err := service.CreateTransaction(context.Background(), alice, fields("-5.00", "2025-07-03", 3, domain.TransactionTypeExpense))
	assert.True(t, financeErrors.IsValidationError(err))

	_, err = service.CreateTransaction(context.Background(), alice, fields("5.00", "2025-07-03", 42, domain.TransactionTypeExpense))
	assert.ErrorIs(t, err, financeErrors.ErrInvalidCategory)

	assert.Zero(t, repo.Count())
}

func TestListTransactions_OnlyOwn(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.CreateTransaction(ctx, alice, fields("10.00", "2025-07-01", 1, domain.TransactionTypeIncome))
	require.NoError(t, err)
	_, err = service.CreateTransaction(ctx, alice, fields("3.00", "2025-07-02", 3, domain.TransactionTypeExpense))
	require.NoError(t, err)
	_, err = service.CreateTransaction(ctx, bob, fields("99.00", "2025-07-02", 3, domain.TransactionTypeExpense))
	require.NoError(t, err)

	list, err := service.ListTransactions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, transaction := range list {
		assert.Equal(t, alice, transaction.UserID)
		assert.NotEmpty(t, transaction.Category.Name)
	}
	assert.Equal(t, "2025-07-02", list[0].Date.Format(domain.DateLayout))

	empty, err := service.ListTransactions(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateTransaction_FullReplacement(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	created, err := service.CreateTransaction(ctx, alice, fields("10.00", "2025-07-01", 3, domain.TransactionTypeExpense))
	require.NoError(t, err)

	replacement := fields("2500.00", "2025-07-05", 1, domain.TransactionTypeIncome)
	replacement.Description = ""
	updated, err := service.UpdateTransaction(ctx, created.ID, alice, replacement)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2500.00", updated.Amount.StringFixed(2))
	assert.Equal(t, domain.TransactionTypeIncome, updated.Type)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, domain.Category{ID: 1, Name: "Ingreso - Salario"}, updated.Category)
	assert.Equal(t, alice, updated.UserID)
}

func TestOwnership(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	created, err := service.CreateTransaction(ctx, alice, fields("10.00", "2025-07-01", 3, domain.TransactionTypeExpense))
	require.NoError(t, err)

	_, err = service.UpdateTransaction(ctx, created.ID, bob, fields("1.00", "2025-07-01", 3, domain.TransactionTypeExpense))
	assert.ErrorIs(t, err, financeErrors.ErrForbidden)

	err = service.DeleteTransaction(ctx, created.ID, bob)
	assert.ErrorIs(t, err, financeErrors.ErrForbidden)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", stored.Amount.StringFixed(2), "a forbidden update must not change the row")

	require.NoError(t, service.DeleteTransaction(ctx, created.ID, alice))
	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, financeErrors.ErrTransactionNotFound)
}

func TestMissingTransactionIsNotFoundForAnyone(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.UpdateTransaction(ctx, 999999, alice, fields("1.00", "2025-07-01", 3, domain.TransactionTypeExpense))
	assert.ErrorIs(t, err, financeErrors.ErrTransactionNotFound)

	err = service.DeleteTransaction(ctx, 999999, bob)
	assert.ErrorIs(t, err, financeErrors.ErrTransactionNotFound)
}

func TestUpdateTransaction_ChecksOwnershipBeforeValidating(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	created, err := service.CreateTransaction(ctx, alice, fields("10.00", "2025-07-01", 3, domain.TransactionTypeExpense))
	require.NoError(t, err)

	invalid := fields("1.00", "2025-07-01", 3, domain.TransactionTypeExpense)
	invalid.Amount = decimal.Zero
	_, err = service.UpdateTransaction(ctx, created.ID, bob, invalid)
	assert.ErrorIs(t, err, financeErrors.ErrForbidden)

	_, err = service.UpdateTransaction(ctx, created.ID, alice, invalid)
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestStoreErrorsPropagate(t *testing.T) {
	service, repo := newTestService()
	repo.Err = errors.New("connection refused")

	_, err := service.ListTransactions(context.Background(), alice)
	assert.EqualError(t, err, "connection refused")

	err = service.DeleteTransaction(context.Background(), 1, alice)
	assert.EqualError(t, err, "connection refused")
}

func TestGetTransactionSummary(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	for _, f := range []domain.TransactionFields{
		fields("2500.00", "2025-07-01", 1, domain.TransactionTypeIncome),
		fields("85.40", "2025-07-03", 3, domain.TransactionTypeExpense),
		fields("750.00", "2025-07-05", 4, domain.TransactionTypeExpense),
		fields("0.10", "2025-06-30", 6, domain.TransactionTypeExpense),
		fields("0.20", "2025-06-30", 6, domain.TransactionTypeExpense),
	} {
		_, err := service.CreateTransaction(ctx, alice, f)
		require.NoError(t, err)
	}
	_, err := service.CreateTransaction(ctx, bob, fields("1000.00", "2025-07-01", 1, domain.TransactionTypeIncome))
	require.NoError(t, err)

	summary, err := service.GetTransactionSummary(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, "2500.00", summary.IncomeTotal.StringFixed(2))
	assert.Equal(t, "835.70", summary.ExpenseTotal.StringFixed(2))
	assert.Equal(t, "1664.30", summary.Balance.StringFixed(2))

	require.Len(t, summary.Months, 2)
	assert.Equal(t, "2025-06", summary.Months[0].Month)
	assert.Equal(t, "0.30", summary.Months[0].ExpenseTotal.StringFixed(2), "decimal sums must not drift")
	assert.Equal(t, "-0.30", summary.Months[0].Balance.StringFixed(2))
	assert.Equal(t, "2025-07", summary.Months[1].Month)
	assert.Equal(t, "835.40", summary.Months[1].ExpenseTotal.StringFixed(2))
}

func TestGetTransactionSummary_Empty(t *testing.T) {
	service, _ := newTestService()

	summary, err := service.GetTransactionSummary(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, summary.Balance.IsZero())
	assert.Empty(t, summary.Months)
}
