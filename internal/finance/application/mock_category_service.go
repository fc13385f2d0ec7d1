package application

import (
	"context"
	"errors"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
)

// MockCategoryService answers from a fixed catalogue. ShouldFail makes every
// call return an error.
type MockCategoryService struct {
	Categories []domain.Category
	ShouldFail bool
}

func (m *MockCategoryService) GetAllCategories(_ context.Context) ([]domain.Category, error) {
	if m.ShouldFail {
		return nil, errors.New("service error")
	}
	return m.Categories, nil
}

func (m *MockCategoryService) DoesCategoryExist(_ context.Context, id int) (bool, error) {
	if m.ShouldFail {
		return false, errors.New("service error")
	}
	for _, c := range m.Categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}
