package payment

import (
	"context"

	"tableorder/internal/domain"
)

type Repository interface {
	// Create appends a payment. A missing order yields domain.ErrNotFound.
	Create(ctx context.Context, p domain.Payment) (*domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
	Delete(ctx context.Context, id int64) error
}
