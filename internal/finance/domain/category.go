package domain

import "context"

type Category struct {
	ID   int    `json:"category_id"`
	Name string `json:"category_name"`
}

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]Category, error)
	ExistsByID(ctx context.Context, categoryID int) (bool, error)
}

// DefaultCategories is the fixed catalogue seeded into an empty database.
var DefaultCategories = []Category{
	{ID: 1, Name: "Ingreso - Salario"},
	{ID: 2, Name: "Ingreso - Inversiones"},
	{ID: 3, Name: "Gasto - Alimentos"},
	{ID: 4, Name: "Gasto - Vivienda"},
	{ID: 5, Name: "Gasto - Transporte"},
	{ID: 6, Name: "Gasto - Ocio"},
	{ID: 7, Name: "Gasto - Salud"},
	{ID: 8, Name: "Gasto - Educación"},
	{ID: 9, Name: "Gasto - Ahorro"},
}
