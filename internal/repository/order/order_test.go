package order

import (
	"context"
	"errors"
	"testing"

	"tableorder/internal/domain"
	"tableorder/internal/testdb"
)

func TestPostgres_CreateAndResolve(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, "abc123")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != domain.OrderStatusOpen || created.TotalCents != 0 {
		t.Fatalf("unexpected order %+v", created)
	}

	got, err := repo.GetOpenByToken(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetOpenByToken: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("resolved order %d, want %d", got.ID, created.ID)
	}

	if _, err := repo.Create(ctx, "abc123"); !errors.Is(err, domain.ErrTokenCollision) {
		t.Fatalf("expected token collision, got %v", err)
	}
}

func TestPostgres_CloseOpen(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	o, err := repo.Create(ctx, "close-me")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	closed, err := repo.CloseOpen(ctx, o.ID, domain.OrderStatusPaid)
	if err != nil {
		t.Fatalf("CloseOpen: %v", err)
	}
	if closed.Status != domain.OrderStatusPaid {
		t.Fatalf("unexpected status %s", closed.Status)
	}
	if _, err := repo.CloseOpen(ctx, o.ID, domain.OrderStatusCancelled); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := repo.GetOpenByToken(ctx, "close-me"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("closed session must not resolve, got %v", err)
	}
	if _, err := repo.CloseOpen(ctx, o.ID+1000, domain.OrderStatusPaid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	o, err := repo.Create(ctx, "purge")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pid := testdb.InsertProduct(t, pool, "Ribeye", 189000, true)
	var itemID int64
	if err := pool.QueryRow(ctx, `INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents) VALUES ($1, $2, 1, 189000) RETURNING id`, o.ID, pid).Scan(&itemID); err != nil {
		t.Fatalf("insert item: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO customizations (order_item_id, note) VALUES ($1, 'well done')`, itemID); err != nil {
		t.Fatalf("insert customization: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO payments (order_id, payment_method, amount_cents) VALUES ($1, 'Cash', 189000)`, o.ID); err != nil {
		t.Fatalf("insert payment: %v", err)
	}

	if err := repo.Delete(ctx, o.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, table := range []string{"order_items", "customizations", "payments"} {
		var count int
		if err := pool.QueryRow(ctx, `SELECT count(*) FROM `+table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected %s empty after purge, got %d", table, count)
		}
	}
	var products int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&products); err != nil {
		t.Fatalf("count products: %v", err)
	}
	if products != 1 {
		t.Fatalf("product must survive order purge")
	}
	if err := repo.Delete(ctx, o.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
