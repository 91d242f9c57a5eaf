package orderitem

import (
	"context"

	"tableorder/internal/domain"
)

// Change describes an update to an existing item. Nil fields are left alone.
// A non-nil Product replaces the referenced product and its captured price.
type Change struct {
	Product  *domain.Product
	Quantity *int
}

type Repository interface {
	// Add inserts an item at product.PriceCents on an Open order, with an
	// optional customization note, and recomputes the order total.
	Add(ctx context.Context, orderID int64, product domain.Product, quantity int, note string) (*domain.OrderItem, error)
	Update(ctx context.Context, orderID, itemID int64, change Change) error
	Remove(ctx context.Context, orderID, itemID int64) error
	GetByID(ctx context.Context, id int64) (*domain.OrderItem, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	ListAll(ctx context.Context) ([]domain.OrderItem, error)

	AddCustomization(ctx context.Context, itemID int64, note string) (*domain.Customization, error)
	UpdateCustomization(ctx context.Context, id int64, note string) (*domain.Customization, error)
	DeleteCustomization(ctx context.Context, id int64) error
	GetCustomization(ctx context.Context, id int64) (*domain.Customization, error)
	ListCustomizations(ctx context.Context) ([]domain.Customization, error)
	ListCustomizationsByItem(ctx context.Context, itemID int64) ([]domain.Customization, error)
}
