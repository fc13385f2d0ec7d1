package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
	financeErrors "github.com/sebuszqo/MyFiance/internal/finance/errors"
)

// MockTransactionRepository keeps transactions in memory. Categories resolve
// against the same catalogue the database is seeded with.
type MockTransactionRepository struct {
	mu           sync.Mutex
	nextID       int64
	transactions map[int64]domain.Transaction
	categories   map[int]string

	// Err, when set, is returned by every call.
	Err error
}

func NewMockTransactionRepository(categories []domain.Category) *MockTransactionRepository {
	byID := make(map[int]string, len(categories))
	for _, c := range categories {
		byID[c.ID] = c.Name
	}
	return &MockTransactionRepository{
		transactions: make(map[int64]domain.Transaction),
		categories:   byID,
	}
}

func (m *MockTransactionRepository) FindByUser(_ context.Context, userID int64) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := []domain.Transaction{}
	for _, t := range m.transactions {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *MockTransactionRepository) FindByID(_ context.Context, transactionID int64) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.transactions[transactionID]
	if !ok {
		return nil, financeErrors.ErrTransactionNotFound
	}
	return &t, nil
}

func (m *MockTransactionRepository) Create(_ context.Context, userID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, err := m.build(userID, fields)
	if err != nil {
		return nil, err
	}
	m.nextID++
	t.ID = m.nextID
	m.transactions[t.ID] = t
	return &t, nil
}

func (m *MockTransactionRepository) Update(_ context.Context, transactionID int64, fields domain.TransactionFields) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	existing, ok := m.transactions[transactionID]
	if !ok {
		return nil, financeErrors.ErrTransactionNotFound
	}
	t, err := m.build(existing.UserID, fields)
	if err != nil {
		return nil, err
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	m.transactions[t.ID] = t
	return &t, nil
}

func (m *MockTransactionRepository) Delete(_ context.Context, transactionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.transactions[transactionID]; !ok {
		return financeErrors.ErrTransactionNotFound
	}
	delete(m.transactions, transactionID)
	return nil
}

func (m *MockTransactionRepository) ReplaceForUser(_ context.Context, userID int64, fields []domain.TransactionFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	replacement := make([]domain.Transaction, 0, len(fields))
	for _, f := range fields {
		t, err := m.build(userID, f)
		if err != nil {
			return err
		}
		replacement = append(replacement, t)
	}
	for id, t := range m.transactions {
		if t.UserID == userID {
			delete(m.transactions, id)
		}
	}
	for _, t := range replacement {
		m.nextID++
		t.ID = m.nextID
		m.transactions[t.ID] = t
	}
	return nil
}

// Count returns how many transactions are stored across all users.
func (m *MockTransactionRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

func (m *MockTransactionRepository) build(userID int64, fields domain.TransactionFields) (domain.Transaction, error) {
	name, ok := m.categories[fields.CategoryID]
	if !ok {
		return domain.Transaction{}, financeErrors.ErrInvalidCategory
	}
	return domain.Transaction{
		UserID:      userID,
		Amount:      fields.Amount,
		Date:        fields.Date,
		Description: fields.Description,
		Type:        fields.Type,
		Category:    domain.Category{ID: fields.CategoryID, Name: name},
		CreatedAt:   time.Now().UTC(),
	}, nil
}
