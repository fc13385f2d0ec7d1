package application

import (
	"context"
	"errors"
	"sort"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	financeErrors "github.com/sebuszqo/MyFiance/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type CategoryServiceInterface interface {
	DoesCategoryExist(ctx context.Context, categoryID int) (bool, error)
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
}

// TransactionService scopes every operation to an already-resolved user id.
// Mutations check that the transaction exists before checking who owns it.
type TransactionService struct {
	repo            domain.TransactionRepository
	categoryService CategoryServiceInterface
}

func NewTransactionService(repo domain.TransactionRepository, categoryService CategoryServiceInterface) *TransactionService {
	return &TransactionService{repo: repo, categoryService: categoryService}
}

type TransactionSummary struct {
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Balance      decimal.Decimal
	Months       []MonthSummary
}

type MonthSummary struct {
	Month        string // YYYY-MM
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Balance      decimal.Decimal
}

func (s *TransactionService) ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	transactions, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

func (s *TransactionService) CreateTransaction(ctx context.Context, userID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	if err := s.validate(ctx, fields); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, userID, fields)
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, transactionID, userID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	if _, err := s.ownedTransaction(ctx, transactionID, userID); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, fields); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, transactionID, fields)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID, userID int64) error {
	if _, err := s.ownedTransaction(ctx, transactionID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, transactionID)
}

func (s *TransactionService) GetTransactionSummary(ctx context.Context, userID int64) (TransactionSummary, error) {
	transactions, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return TransactionSummary{}, err
	}

	summary := TransactionSummary{}
	months := make(map[string]*MonthSummary)

	for _, transaction := range transactions {
		key := transaction.Date.Format("2006-01")
		month, exists := months[key]
		if !exists {
			month = &MonthSummary{Month: key}
			months[key] = month
		}

		switch transaction.Type {
		case domain.TransactionTypeIncome:
			summary.IncomeTotal = summary.IncomeTotal.Add(transaction.Amount)
			month.IncomeTotal = month.IncomeTotal.Add(transaction.Amount)
		case domain.TransactionTypeExpense:
			summary.ExpenseTotal = summary.ExpenseTotal.Add(transaction.Amount)
			month.ExpenseTotal = month.ExpenseTotal.Add(transaction.Amount)
		}
		summary.Balance = summary.Balance.Add(transaction.Signed())
		month.Balance = month.Balance.Add(transaction.Signed())
	}

	summary.Months = make([]MonthSummary, 0, len(months))
	for _, month := range months {
		summary.Months = append(summary.Months, *month)
	}
	sort.Slice(summary.Months, func(i, j int) bool {
		return summary.Months[i].Month < summary.Months[j].Month
	})
	return summary, nil
}

// ownedTransaction loads transactionID and fails with ErrTransactionNotFound
// when it does not exist, or ErrForbidden when userID is not its owner.
func (s *TransactionService) ownedTransaction(ctx context.Context, transactionID, userID int64) (*domain.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, financeErrors.ErrTransactionNotFound) {
			return nil, financeErrors.ErrTransactionNotFound
		}
		return nil, err
	}
	if transaction.UserID != userID {
		return nil, financeErrors.ErrForbidden
	}
	return transaction, nil
}

func (s *TransactionService) validate(ctx context.Context, fields domain.TransactionFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	exists, err := s.categoryService.DoesCategoryExist(ctx, fields.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return financeErrors.ErrInvalidCategory
	}
	return nil
}
