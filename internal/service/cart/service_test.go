package cart

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableorder/internal/domain"
	"tableorder/internal/events"
	itemrepo "tableorder/internal/repository/orderitem"
)

type stubItems struct {
	items map[int64]*domain.OrderItem

	addCalls   int
	lastAdd    domain.Product
	lastQty    int
	lastNote   string
	addErr     error
	updates    []itemrepo.Change
	removeErr  error
	removed    []int64
	custAdded  []string
	custEdited map[int64]string
}

func (s *stubItems) Add(_ context.Context, orderID int64, product domain.Product, quantity int, note string) (*domain.OrderItem, error) {
	s.addCalls++
	s.lastAdd = product
	s.lastQty = quantity
	s.lastNote = note
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &domain.OrderItem{ID: 10, OrderID: orderID, ProductID: product.ID, Quantity: quantity, UnitPriceCents: product.PriceCents}, nil
}

func (s *stubItems) Update(_ context.Context, _, _ int64, change itemrepo.Change) error {
	s.updates = append(s.updates, change)
	return nil
}

func (s *stubItems) Remove(_ context.Context, _, itemID int64) error {
	s.removed = append(s.removed, itemID)
	return s.removeErr
}

func (s *stubItems) GetByID(_ context.Context, id int64) (*domain.OrderItem, error) {
	if it, ok := s.items[id]; ok {
		return it, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubItems) ListByOrder(context.Context, int64) ([]domain.OrderItem, error) { return nil, nil }
func (s *stubItems) ListAll(context.Context) ([]domain.OrderItem, error)            { return nil, nil }

func (s *stubItems) AddCustomization(_ context.Context, itemID int64, note string) (*domain.Customization, error) {
	s.custAdded = append(s.custAdded, note)
	return &domain.Customization{ID: 1, OrderItemID: itemID, Note: note}, nil
}

func (s *stubItems) UpdateCustomization(_ context.Context, id int64, note string) (*domain.Customization, error) {
	if s.custEdited == nil {
		s.custEdited = map[int64]string{}
	}
	s.custEdited[id] = note
	return &domain.Customization{ID: id, Note: note}, nil
}

func (s *stubItems) DeleteCustomization(context.Context, int64) error { return nil }
func (s *stubItems) GetCustomization(_ context.Context, id int64) (*domain.Customization, error) {
	return &domain.Customization{ID: id}, nil
}
func (s *stubItems) ListCustomizations(context.Context) ([]domain.Customization, error) {
	return []domain.Customization{{ID: 1}, {ID: 2}}, nil
}
func (s *stubItems) ListCustomizationsByItem(_ context.Context, itemID int64) ([]domain.Customization, error) {
	return []domain.Customization{{ID: 1, OrderItemID: itemID}}, nil
}

type stubProducts map[int64]domain.Product

func (s stubProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type stubOrders map[int64]domain.OrderStatus

func (s stubOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	st, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Order{ID: id, Status: st}, nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.events = append(p.events, e)
}

var menu = stubProducts{
	1: {ID: 1, Name: "Ribeye", PriceCents: 289000, IsAvailable: true},
	2: {ID: 2, Name: "Caesar Salad", PriceCents: 59000, IsAvailable: true},
	3: {ID: 3, Name: "Wagyu", PriceCents: 990000, IsAvailable: false},
}

func newService(items *stubItems, pub events.Publisher) *Service {
	orders := stubOrders{1: domain.OrderStatusOpen, 2: domain.OrderStatusPaid}
	return New(items, menu, orders, pub, nil)
}

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

func TestAddItem_SnapshotsPrice(t *testing.T) {
	items := &stubItems{}
	pub := &recordingPublisher{}
	svc := newService(items, pub)

	item, err := svc.AddItem(context.Background(), AddItemInput{OrderID: 1, ProductID: 1, Quantity: 3, Note: " medium rare "})
	require.NoError(t, err)
	assert.Equal(t, int64(289000), item.UnitPriceCents)
	assert.Equal(t, 3, items.lastQty)
	assert.Equal(t, "medium rare", items.lastNote)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ItemAdded, pub.events[0].Type)
}

func TestAddItem_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   AddItemInput
		want error
	}{
		{"missing order", AddItemInput{OrderID: 9, ProductID: 1, Quantity: 1}, domain.ErrNotFound},
		{"paid order", AddItemInput{OrderID: 2, ProductID: 1, Quantity: 1}, domain.ErrOrderNotOpen},
		{"missing product", AddItemInput{OrderID: 1, ProductID: 42, Quantity: 1}, domain.ErrInvalidReference},
		{"unavailable product", AddItemInput{OrderID: 1, ProductID: 3, Quantity: 1}, domain.ErrProductUnavailable},
		{"zero quantity", AddItemInput{OrderID: 1, ProductID: 1, Quantity: 0}, domain.ErrInvalidInput},
		{"negative quantity", AddItemInput{OrderID: 1, ProductID: 1, Quantity: -2}, domain.ErrInvalidInput},
		{"quantity over column range", AddItemInput{OrderID: 1, ProductID: 1, Quantity: domain.MaxItemQuantity + 1}, domain.ErrInvalidInput},
		{"stale price", AddItemInput{OrderID: 1, ProductID: 1, Quantity: 1, PriceCents: int64p(100)}, domain.ErrInvalidInput},
		{"long note", AddItemInput{OrderID: 1, ProductID: 1, Quantity: 1, Note: strings.Repeat("x", domain.MaxCustomizationLen+1)}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := &stubItems{}
			svc := newService(items, nil)
			_, err := svc.AddItem(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, items.addCalls)
		})
	}
}

func TestAddItem_NoteAtBound(t *testing.T) {
	items := &stubItems{}
	svc := newService(items, nil)
	_, err := svc.AddItem(context.Background(), AddItemInput{OrderID: 1, ProductID: 1, Quantity: 1, Note: strings.Repeat("é", domain.MaxCustomizationLen)})
	require.NoError(t, err)
}

func TestUpdateItem(t *testing.T) {
	existing := &domain.OrderItem{ID: 5, OrderID: 1, ProductID: 1, Quantity: 2, UnitPriceCents: 289000}

	t.Run("quantity", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: existing}}
		svc := newService(items, nil)
		require.NoError(t, svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 1, ItemID: 5, Quantity: intp(4), PriceCents: int64p(289000)}))
		require.Len(t, items.updates, 1)
		assert.Nil(t, items.updates[0].Product)
		assert.Equal(t, 4, *items.updates[0].Quantity)
	})

	t.Run("product change resnapshots", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: existing}}
		svc := newService(items, nil)
		require.NoError(t, svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 1, ItemID: 5, ProductID: int64p(2)}))
		require.Len(t, items.updates, 1)
		assert.Equal(t, int64(59000), items.updates[0].Product.PriceCents)
	})

	t.Run("price change rejected", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: existing}}
		svc := newService(items, nil)
		err := svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 1, ItemID: 5, PriceCents: int64p(1)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, items.updates)
	})

	t.Run("quantity over column range", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: existing}}
		svc := newService(items, nil)
		err := svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 1, ItemID: 5, Quantity: intp(domain.MaxItemQuantity + 1)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, items.updates)
	})

	t.Run("unavailable product", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: existing}}
		svc := newService(items, nil)
		err := svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 1, ItemID: 5, ProductID: int64p(3)})
		assert.ErrorIs(t, err, domain.ErrProductUnavailable)
	})

	t.Run("item of another order", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: existing}}
		svc := New(items, menu, stubOrders{1: domain.OrderStatusOpen, 4: domain.OrderStatusOpen}, nil, nil)
		err := svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 4, ItemID: 5, Quantity: intp(1)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("zero quantity", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: existing}}
		svc := newService(items, nil)
		err := svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 1, ItemID: 5, Quantity: intp(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("closed order", func(t *testing.T) {
		items := &stubItems{items: map[int64]*domain.OrderItem{5: {ID: 5, OrderID: 2}}}
		svc := newService(items, nil)
		err := svc.UpdateItem(context.Background(), UpdateItemInput{OrderID: 2, ItemID: 5, Quantity: intp(1)})
		assert.ErrorIs(t, err, domain.ErrOrderNotOpen)
	})
}

func TestRemoveItem(t *testing.T) {
	items := &stubItems{}
	pub := &recordingPublisher{}
	svc := newService(items, pub)
	require.NoError(t, svc.RemoveItem(context.Background(), 1, 5))
	assert.Equal(t, []int64{5}, items.removed)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.ItemRemoved, pub.events[0].Type)

	items.removeErr = domain.ErrNotFound
	assert.ErrorIs(t, svc.RemoveItem(context.Background(), 1, 6), domain.ErrNotFound)
	assert.Len(t, pub.events, 1)
}

func TestCustomizations(t *testing.T) {
	items := &stubItems{items: map[int64]*domain.OrderItem{5: {ID: 5, OrderID: 1}}}
	svc := newService(items, nil)
	ctx := context.Background()

	_, err := svc.AddOrUpdateCustomization(ctx, 5, 0, "no onions")
	require.NoError(t, err)
	assert.Equal(t, []string{"no onions"}, items.custAdded)

	_, err = svc.AddOrUpdateCustomization(ctx, 5, 3, "extra sauce")
	require.NoError(t, err)
	assert.Equal(t, "extra sauce", items.custEdited[3])

	_, err = svc.AddOrUpdateCustomization(ctx, 5, 0, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AddOrUpdateCustomization(ctx, 5, 0, strings.Repeat("n", domain.MaxCustomizationLen+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := svc.ListCustomizations(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byItem, err := svc.ListCustomizations(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, byItem, 1)

	_, err = svc.ListCustomizations(ctx, 77)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
