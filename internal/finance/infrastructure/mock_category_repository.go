package infrastructure

import (
	"context"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
)

type MockCategoryRepository struct {
	Categories []domain.Category
	Err        error
}

func (m *MockCategoryRepository) FindAll(_ context.Context) ([]domain.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]domain.Category{}, m.Categories...), nil
}

func (m *MockCategoryRepository) ExistsByID(_ context.Context, categoryID int) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, c := range m.Categories {
		if c.ID == categoryID {
			return true, nil
		}
	}
	return false, nil
}
