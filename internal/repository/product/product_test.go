package product

import (
	"context"
	"errors"
	"testing"

	"tableorder/internal/domain"
	"tableorder/internal/testdb"
)

func TestPostgres_CreateListGet(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Product{
		Name:        "Wagyu Tenderloin",
		PriceCents:  289000,
		Category:    "Premium Steak",
		SpecialTag:  "Luxury",
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 || created.PriceCents != 289000 {
		t.Fatalf("unexpected product %+v", created)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Wagyu Tenderloin" || got.Category != "Premium Steak" || !got.IsAvailable {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, created.ID+100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_DeleteReferencedProductFails(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	pid := testdb.InsertProduct(t, pool, "T-Bone", 159000, true)
	var orderID int64
	if err := pool.QueryRow(ctx, `INSERT INTO orders (session_token) VALUES ('tok-1') RETURNING id`).Scan(&orderID); err != nil {
		t.Fatalf("insert order: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents) VALUES ($1, $2, 1, 159000)`, orderID, pid); err != nil {
		t.Fatalf("insert item: %v", err)
	}

	if err := repo.Delete(ctx, pid); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
	if _, err := repo.GetByID(ctx, pid); err != nil {
		t.Fatalf("product should still exist: %v", err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	first, err := repo.Upsert(ctx, domain.Product{Name: "Caesar Salad", PriceCents: 39000, IsAvailable: true, ImageURL: "/images/caesar.jpg"})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	second, err := repo.Upsert(ctx, domain.Product{Name: "Caesar Salad", PriceCents: 42000, IsAvailable: false})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same ID after update")
	}
	if second.PriceCents != 42000 || second.IsAvailable || second.ImageURL != "/images/caesar.jpg" {
		t.Fatalf("unexpected updated product %+v", second)
	}
}
