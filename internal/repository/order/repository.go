package order

import (
	"context"

	"tableorder/internal/domain"
)

type Repository interface {
	// Create inserts an Open order for token. A duplicate token yields
	// domain.ErrTokenCollision.
	Create(ctx context.Context, token string) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetOpenByToken(ctx context.Context, token string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	// CloseOpen moves an Open order to a terminal status.
	CloseOpen(ctx context.Context, id int64, to domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}
