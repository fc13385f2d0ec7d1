package application

import (
	"context"

	"github.com/sebuszqo/MyFiance/internal/finance/domain"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) DoesCategoryExist(ctx context.Context, categoryID int) (bool, error) {
	return s.repo.ExistsByID(ctx, categoryID)
}

func (s *CategoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.FindAll(ctx)
}
