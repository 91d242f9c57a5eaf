package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableorder/internal/domain"
	"tableorder/internal/testdb"
)

func TestPostgres_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	var orderID int64
	if err := pool.QueryRow(ctx, `INSERT INTO orders (session_token) VALUES ('pay') RETURNING id`).Scan(&orderID); err != nil {
		t.Fatalf("insert order: %v", err)
	}

	now := time.Now().UTC()
	first, err := repo.Create(ctx, domain.Payment{OrderID: orderID, Method: "Cash", AmountCents: 500000, PaidAt: &now})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Payment{OrderID: orderID, Method: "Card", AmountCents: 426000, PaidAt: &now}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	list, err := repo.ListByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].Method != "Card" {
		t.Fatalf("unexpected payments %+v", list)
	}
	if list[0].PaidAt == nil {
		t.Fatalf("expected paid timestamp")
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_CreateForMissingOrder(t *testing.T) {
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	_, err := repo.Create(context.Background(), domain.Payment{OrderID: 999, Method: "Cash", AmountCents: 100})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
