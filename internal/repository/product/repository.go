package product

import (
	"context"

	"tableorder/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id int64) error
	// Upsert inserts or updates a product matched by name.
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
