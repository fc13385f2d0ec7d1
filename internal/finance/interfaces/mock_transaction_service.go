package interfaces

import (
	"context"

	"github.com/sebuszqo/MyFiance/internal/finance/application"
	"github.com/sebuszqo/MyFiance/internal/finance/domain"
)

// MockTransactionService returns canned data, or Err from every call.
type MockTransactionService struct {
	Transactions []domain.Transaction
	Summary      application.TransactionSummary
	Err          error

	Calls      int
	LastUserID int64
	LastID     int64
	LastFields domain.TransactionFields
}

func (m *MockTransactionService) ListTransactions(_ context.Context, userID int64) ([]domain.Transaction, error) {
	m.Calls++
	m.LastUserID = userID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Transactions, nil
}

func (m *MockTransactionService) CreateTransaction(_ context.Context, userID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	m.Calls++
	m.LastUserID = userID
	m.LastFields = fields
	if m.Err != nil {
		return nil, m.Err
	}
	return m.echo(1, userID, fields), nil
}

func (m *MockTransactionService) UpdateTransaction(_ context.Context, transactionID, userID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	m.Calls++
	m.LastID = transactionID
	m.LastUserID = userID
	m.LastFields = fields
	if m.Err != nil {
		return nil, m.Err
	}
	return m.echo(transactionID, userID, fields), nil
}

func (m *MockTransactionService) DeleteTransaction(_ context.Context, transactionID, userID int64) error {
	m.Calls++
	m.LastID = transactionID
	m.LastUserID = userID
	return m.Err
}

func (m *MockTransactionService) GetTransactionSummary(_ context.Context, userID int64) (application.TransactionSummary, error) {
	m.Calls++
	m.LastUserID = userID
	if m.Err != nil {
		return application.TransactionSummary{}, m.Err
	}
	return m.Summary, nil
}

func (m *MockTransactionService) echo(id, userID int64, fields domain.TransactionFields) *domain.Transaction {
	return &domain.Transaction{
		ID:          id,
		UserID:      userID,
		Amount:      fields.Amount,
		Date:        fields.Date,
		Description: fields.Description,
		Type:        fields.Type,
		Category:    domain.Category{ID: fields.CategoryID, Name: "Category"},
	}
}
