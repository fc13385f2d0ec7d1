package interfaces

import (
	"context"
	"errors"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
)

type MockCategoryService struct {
	categories []domain.Category
	shouldFail bool
}

func (m *MockCategoryService) GetAllCategories(_ context.Context) ([]domain.Category, error) {
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	return m.categories, nil
}
