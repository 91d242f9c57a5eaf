package orderitem

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"tableorder/internal/domain"
	"tableorder/internal/testdb"
)

func newOrder(t *testing.T, pool *pgxpool.Pool, token, status string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(context.Background(), `INSERT INTO orders (session_token, status) VALUES ($1, $2) RETURNING id`, token, status).Scan(&id); err != nil {
		t.Fatalf("insert order: %v", err)
	}
	return id
}

func orderTotal(t *testing.T, pool *pgxpool.Pool, orderID int64) int64 {
	t.Helper()
	var total int64
	if err := pool.QueryRow(context.Background(), `SELECT total_cents FROM orders WHERE id = $1`, orderID).Scan(&total); err != nil {
		t.Fatalf("read total: %v", err)
	}
	return total
}

func TestPostgres_AddUpdateRemoveKeepsTotal(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	orderID := newOrder(t, pool, "abc123", "Open")
	wagyu := domain.Product{ID: testdb.InsertProduct(t, pool, "Wagyu", 289000, true), PriceCents: 289000}
	mac := domain.Product{ID: testdb.InsertProduct(t, pool, "Truffle Mac", 59000, true), PriceCents: 59000}

	first, err := repo.Add(ctx, orderID, wagyu, 3, "medium rare")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if first.UnitPriceCents != 289000 || first.Product == nil || first.Product.Name != "Wagyu" {
		t.Fatalf("unexpected item %+v", first)
	}
	if len(first.Customizations) != 1 || first.Customizations[0].Note != "medium rare" {
		t.Fatalf("expected customization, got %+v", first.Customizations)
	}
	if got := orderTotal(t, pool, orderID); got != 867000 {
		t.Fatalf("expected total 867000, got %d", got)
	}

	if _, err := repo.Add(ctx, orderID, mac, 1, ""); err != nil {
		t.Fatalf("Add mac: %v", err)
	}
	if got := orderTotal(t, pool, orderID); got != 926000 {
		t.Fatalf("expected total 926000, got %d", got)
	}

	qty := 2
	if err := repo.Update(ctx, orderID, first.ID, Change{Quantity: &qty}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := orderTotal(t, pool, orderID); got != 2*289000+59000 {
		t.Fatalf("unexpected total after update %d", got)
	}

	if err := repo.Remove(ctx, orderID, first.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := orderTotal(t, pool, orderID); got != 59000 {
		t.Fatalf("expected total 59000, got %d", got)
	}
	if err := repo.Remove(ctx, orderID, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}

	items, err := repo.ListByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != mac.ID {
		t.Fatalf("unexpected items %+v", items)
	}
	if sum := domain.SumItems(items); sum != orderTotal(t, pool, orderID) {
		t.Fatalf("cached total %d differs from items %d", orderTotal(t, pool, orderID), sum)
	}
}

func TestPostgres_AddToClosedOrderFails(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	product := domain.Product{ID: testdb.InsertProduct(t, pool, "Ribeye", 189000, true), PriceCents: 189000}
	for _, status := range []string{"Paid", "Cancelled"} {
		orderID := newOrder(t, pool, "tok-"+status, status)
		if _, err := repo.Add(ctx, orderID, product, 1, ""); !errors.Is(err, domain.ErrOrderNotOpen) {
			t.Fatalf("%s: expected order not open, got %v", status, err)
		}
		var count int
		if err := pool.QueryRow(ctx, `SELECT count(*) FROM order_items WHERE order_id = $1`, orderID).Scan(&count); err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 0 {
			t.Fatalf("%s: expected no rows, got %d", status, count)
		}
	}
}

func TestPostgres_PriceSnapshotSurvivesCatalogChange(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	orderID := newOrder(t, pool, "snap", "Open")
	pid := testdb.InsertProduct(t, pool, "Lobster Tail", 129000, true)
	item, err := repo.Add(ctx, orderID, domain.Product{ID: pid, PriceCents: 129000}, 1, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := pool.Exec(ctx, `UPDATE products SET price_cents = 150000 WHERE id = $1`, pid); err != nil {
		t.Fatalf("reprice: %v", err)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UnitPriceCents != 129000 {
		t.Fatalf("unit price changed to %d", got.UnitPriceCents)
	}
	if got.Product.PriceCents != 150000 {
		t.Fatalf("expected joined product to show the new price, got %d", got.Product.PriceCents)
	}
}

func TestPostgres_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	orderID := newOrder(t, pool, "race", "Open")
	a := domain.Product{ID: testdb.InsertProduct(t, pool, "A", 1000, true), PriceCents: 1000}
	b := domain.Product{ID: testdb.InsertProduct(t, pool, "B", 2500, true), PriceCents: 2500}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, p := range []domain.Product{a, b} {
		wg.Add(1)
		go func(p domain.Product) {
			defer wg.Done()
			_, err := repo.Add(ctx, orderID, p, 2, "")
			errs <- err
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent add: %v", err)
		}
	}

	items, err := repo.ListByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := orderTotal(t, pool, orderID); got != 7000 {
		t.Fatalf("expected total 7000, got %d", got)
	}
}

func TestPostgres_Customizations(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	orderID := newOrder(t, pool, "notes", "Open")
	pid := testdb.InsertProduct(t, pool, "T-Bone", 159000, true)
	item, err := repo.Add(ctx, orderID, domain.Product{ID: pid, PriceCents: 159000}, 1, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	c, err := repo.AddCustomization(ctx, item.ID, "no salt")
	if err != nil {
		t.Fatalf("AddCustomization: %v", err)
	}
	if _, err := repo.UpdateCustomization(ctx, c.ID, "extra pepper"); err != nil {
		t.Fatalf("UpdateCustomization: %v", err)
	}
	got, err := repo.GetCustomization(ctx, c.ID)
	if err != nil || got.Note != "extra pepper" {
		t.Fatalf("unexpected customization %+v err=%v", got, err)
	}

	if err := repo.Remove(ctx, orderID, item.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := repo.GetCustomization(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected customization cascade, got %v", err)
	}
}
