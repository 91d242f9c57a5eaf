// Package cart builds the item list of an Open order. The order row lock and
// total recomputation live in the order item repository; this package
// validates requests against the catalog first.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"tableorder/internal/domain"
	"tableorder/internal/events"
	"tableorder/internal/logging"
	itemrepo "tableorder/internal/repository/orderitem"
)

type itemRepo interface {
	Add(ctx context.Context, orderID int64, product domain.Product, quantity int, note string) (*domain.OrderItem, error)
	Update(ctx context.Context, orderID, itemID int64, change itemrepo.Change) error
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

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type orderRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

type Service struct {
	items    itemRepo
	products productRepo
	orders   orderRepo
	events   events.Publisher
	logger   *zap.Logger
}

func New(items itemRepo, products productRepo, orders orderRepo, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		items:    items,
		products: products,
		orders:   orders,
		events:   publisher,
		logger:   logging.OrNop(logger).Named("cart"),
	}
}

type AddItemInput struct {
	OrderID   int64
	ProductID int64
	Quantity  int
	// PriceCents, when set, must match the current catalog price.
	PriceCents *int64
	Note       string
}

type UpdateItemInput struct {
	OrderID    int64
	ItemID     int64
	ProductID  *int64
	Quantity   *int
	PriceCents *int64
}

func (s *Service) AddItem(ctx context.Context, in AddItemInput) (*domain.OrderItem, error) {
	if err := s.requireOpen(ctx, in.OrderID); err != nil {
		return nil, err
	}
	product, err := s.availableProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := checkQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if in.PriceCents != nil && *in.PriceCents != product.PriceCents {
		return nil, fmt.Errorf("%w: price %s does not match the menu price %s",
			domain.ErrInvalidInput, domain.FormatCents(*in.PriceCents), domain.FormatCents(product.PriceCents))
	}
	note, err := optionalNote(in.Note)
	if err != nil {
		return nil, err
	}

	item, err := s.items.Add(ctx, in.OrderID, *product, in.Quantity, note)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{
		Type:    events.ItemAdded,
		OrderID: in.OrderID,
		Data: map[string]interface{}{
			"itemId":         item.ID,
			"productId":      product.ID,
			"productName":    product.Name,
			"quantity":       item.Quantity,
			"unitPriceCents": item.UnitPriceCents,
			"note":           note,
		},
	})
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return s.items.ListByOrder(ctx, orderID)
}

func (s *Service) ListAllItems(ctx context.Context) ([]domain.OrderItem, error) {
	return s.items.ListAll(ctx)
}

func (s *Service) GetItem(ctx context.Context, itemID int64) (*domain.OrderItem, error) {
	return s.items.GetByID(ctx, itemID)
}

// UpdateItem changes the quantity or product of an item. The captured unit
// price only changes together with the product.
func (s *Service) UpdateItem(ctx context.Context, in UpdateItemInput) error {
	if in.Quantity != nil {
		if err := checkQuantity(*in.Quantity); err != nil {
			return err
		}
	}
	if err := s.requireOpen(ctx, in.OrderID); err != nil {
		return err
	}
	item, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return err
	}
	if item.OrderID != in.OrderID {
		return fmt.Errorf("%w: item %d is not part of order %d", domain.ErrNotFound, in.ItemID, in.OrderID)
	}

	var change itemrepo.Change
	expectedPrice := item.UnitPriceCents
	if in.ProductID != nil && *in.ProductID != item.ProductID {
		product, err := s.availableProduct(ctx, *in.ProductID)
		if err != nil {
			return err
		}
		change.Product = product
		expectedPrice = product.PriceCents
	}
	if in.PriceCents != nil && *in.PriceCents != expectedPrice {
		return fmt.Errorf("%w: unit price is fixed at %s", domain.ErrInvalidInput, domain.FormatCents(expectedPrice))
	}
	change.Quantity = in.Quantity
	if change.Product == nil && change.Quantity == nil {
		return nil
	}

	if err := s.items.Update(ctx, in.OrderID, in.ItemID, change); err != nil {
		return err
	}
	s.logger.Info("item updated",
		zap.Int64("order_id", in.OrderID),
		zap.Int64("item_id", in.ItemID),
		zap.Bool("product_changed", change.Product != nil))
	data := map[string]interface{}{"itemId": in.ItemID}
	if change.Product != nil {
		data["productId"] = change.Product.ID
		data["unitPriceCents"] = change.Product.PriceCents
	}
	if change.Quantity != nil {
		data["quantity"] = *change.Quantity
	}
	s.events.Publish(ctx, events.Event{Type: events.ItemUpdated, OrderID: in.OrderID, Data: data})
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	if err := s.items.Remove(ctx, orderID, itemID); err != nil {
		return err
	}
	s.events.Publish(ctx, events.Event{
		Type:    events.ItemRemoved,
		OrderID: orderID,
		Data:    map[string]interface{}{"itemId": itemID},
	})
	return nil
}

// AddOrUpdateCustomization edits the customization with customizationID when
// it is non-zero and appends a new one to itemID otherwise.
func (s *Service) AddOrUpdateCustomization(ctx context.Context, itemID, customizationID int64, note string) (*domain.Customization, error) {
	note, err := requiredNote(note)
	if err != nil {
		return nil, err
	}
	if customizationID != 0 {
		return s.items.UpdateCustomization(ctx, customizationID, note)
	}
	return s.items.AddCustomization(ctx, itemID, note)
}

func (s *Service) RemoveCustomization(ctx context.Context, customizationID int64) error {
	return s.items.DeleteCustomization(ctx, customizationID)
}

func (s *Service) GetCustomization(ctx context.Context, customizationID int64) (*domain.Customization, error) {
	return s.items.GetCustomization(ctx, customizationID)
}

// ListCustomizations lists every customization, or only those of itemID when
// it is non-zero.
func (s *Service) ListCustomizations(ctx context.Context, itemID int64) ([]domain.Customization, error) {
	if itemID == 0 {
		return s.items.ListCustomizations(ctx)
	}
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.items.ListCustomizationsByItem(ctx, itemID)
}

func (s *Service) requireOpen(ctx context.Context, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusOpen {
		return fmt.Errorf("%w: order %d is %s", domain.ErrOrderNotOpen, orderID, order.Status)
	}
	return nil
}

func (s *Service) availableProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %d does not exist", domain.ErrInvalidReference, productID)
		}
		return nil, err
	}
	if !product.IsAvailable {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, product.Name)
	}
	return product, nil
}

func optionalNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > domain.MaxCustomizationLen {
		return "", fmt.Errorf("%w: note longer than %d characters", domain.ErrInvalidInput, domain.MaxCustomizationLen)
	}
	return note, nil
}

func requiredNote(note string) (string, error) {
	note, err := optionalNote(note)
	if err != nil {
		return "", err
	}
	if note == "" {
		return "", fmt.Errorf("%w: note required", domain.ErrInvalidInput)
	}
	return note, nil
}

func checkQuantity(q int) error {
	if q <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	if q > domain.MaxItemQuantity {
		return fmt.Errorf("%w: quantity must be at most %d", domain.ErrInvalidInput, domain.MaxItemQuantity)
	}
	return nil
}
