// Package query serves read-only projections of orders and the menu.
package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tableorder/internal/domain"
)

type orderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

type itemReader interface {
	ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	ListAll(ctx context.Context) ([]domain.OrderItem, error)
}

type paymentReader interface {
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
}

type catalogReader interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type Service struct {
	orders   orderReader
	items    itemReader
	payments paymentReader
	catalog  catalogReader
}

func New(orders orderReader, items itemReader, payments paymentReader, catalog catalogReader) *Service {
	return &Service{orders: orders, items: items, payments: payments, catalog: catalog}
}

// OrderView is an order with its items, payments and settlement figures.
type OrderView struct {
	domain.Order
	PaidCents    int64 `json:"paidCents"`
	BalanceCents int64 `json:"balanceCents"`
}

func newView(o domain.Order) OrderView {
	paid := domain.SumPayments(o.Payments)
	return OrderView{Order: o, PaidCents: paid, BalanceCents: o.TotalCents - paid}
}

func (s *Service) OrderDetail(ctx context.Context, orderID int64) (*OrderView, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, *order)
}

// SessionView attaches items and payments to an order already resolved
// from its session token.
func (s *Service) SessionView(ctx context.Context, order domain.Order) (*OrderView, error) {
	return s.detail(ctx, order)
}

func (s *Service) detail(ctx context.Context, order domain.Order) (*OrderView, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.items.ListByOrder(gctx, order.ID)
		order.Items = items
		return err
	})
	g.Go(func() error {
		payments, err := s.payments.ListByOrder(gctx, order.ID)
		order.Payments = payments
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	view := newView(order)
	return &view, nil
}

// Orders lists every order with items and payments attached.
func (s *Service) Orders(ctx context.Context) ([]OrderView, error) {
	var (
		orders   []domain.Order
		items    []domain.OrderItem
		payments []domain.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.orders.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		items, err = s.items.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.payments.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	itemsByOrder := make(map[int64][]domain.OrderItem)
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
	}
	paymentsByOrder := make(map[int64][]domain.Payment)
	for _, p := range payments {
		paymentsByOrder[p.OrderID] = append(paymentsByOrder[p.OrderID], p)
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		o.Items = itemsByOrder[o.ID]
		o.Payments = paymentsByOrder[o.ID]
		views = append(views, newView(o))
	}
	return views, nil
}

func (s *Service) Catalog(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.List(ctx)
}
