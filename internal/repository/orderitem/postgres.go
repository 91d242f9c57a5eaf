package orderitem

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tableorder/internal/db"
	"tableorder/internal/domain"
	"tableorder/internal/logging"
)

const itemSelect = `
SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price_cents, i.created_at,
       p.id, p.name, p.price_cents, COALESCE(p.category, ''), COALESCE(p.description, ''),
       COALESCE(p.special_tag, ''), COALESCE(p.image_url, ''), p.is_available, p.created_at
FROM order_items i
JOIN products p ON p.id = i.product_id
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("orderitem_repo")}
}

func (r *postgresRepo) Add(ctx context.Context, orderID int64, product domain.Product, quantity int, note string) (*domain.OrderItem, error) {
	var itemID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOpenOrder(ctx, tx, orderID); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id
`, orderID, product.ID, quantity, product.PriceCents).Scan(&itemID)
		if err != nil {
			if db.IsCode(err, db.CodeForeignKeyViolation, "") {
				return fmt.Errorf("%w: product %d", domain.ErrInvalidReference, product.ID)
			}
			return err
		}
		if note != "" {
			if _, err := tx.Exec(ctx, `INSERT INTO customizations (order_item_id, note) VALUES ($1, $2)`, itemID, note); err != nil {
				return err
			}
		}
		return updateOrderTotal(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("item added",
		zap.Int64("order_id", orderID),
		zap.Int64("item_id", itemID),
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", quantity),
		zap.Int64("unit_price_cents", product.PriceCents))
	return r.GetByID(ctx, itemID)
}

func (r *postgresRepo) Update(ctx context.Context, orderID, itemID int64, change Change) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOpenOrder(ctx, tx, orderID); err != nil {
			return err
		}
		var exists bool
		err := tx.QueryRow(ctx, `
SELECT true FROM order_items WHERE id = $1 AND order_id = $2 FOR UPDATE
`, itemID, orderID).Scan(&exists)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		if change.Product != nil {
			if _, err := tx.Exec(ctx, `
UPDATE order_items SET product_id = $1, unit_price_cents = $2 WHERE id = $3
`, change.Product.ID, change.Product.PriceCents, itemID); err != nil {
				if db.IsCode(err, db.CodeForeignKeyViolation, "") {
					return fmt.Errorf("%w: product %d", domain.ErrInvalidReference, change.Product.ID)
				}
				return err
			}
		}
		if change.Quantity != nil {
			if _, err := tx.Exec(ctx, `UPDATE order_items SET quantity = $1 WHERE id = $2`, *change.Quantity, itemID); err != nil {
				return err
			}
		}
		return updateOrderTotal(ctx, tx, orderID)
	})
}

func (r *postgresRepo) Remove(ctx context.Context, orderID, itemID int64) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOpenOrder(ctx, tx, orderID); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM order_items WHERE id = $1 AND order_id = $2`, itemID, orderID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return updateOrderTotal(ctx, tx, orderID)
	})
	if err == nil {
		r.logger.Info("item removed", zap.Int64("order_id", orderID), zap.Int64("item_id", itemID))
	}
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.OrderItem, error) {
	items, err := r.queryItems(ctx, itemSelect+`WHERE i.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return &items[0], nil
}

// ListByOrder returns items in insertion order.
func (r *postgresRepo) ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return r.queryItems(ctx, itemSelect+`WHERE i.order_id = $1 ORDER BY i.id ASC`, orderID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.OrderItem, error) {
	return r.queryItems(ctx, itemSelect+`ORDER BY i.id ASC`)
}

func (r *postgresRepo) queryItems(ctx context.Context, q string, args ...interface{}) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	byID := make(map[int64]int)
	for rows.Next() {
		var it domain.OrderItem
		var p domain.Product
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPriceCents, &it.CreatedAt,
			&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Description,
			&p.SpecialTag, &p.ImageURL, &p.IsAvailable, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		it.Product = &p
		byID[it.ID] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	notes, err := r.queryCustomizations(ctx, `
SELECT id, order_item_id, note FROM customizations
WHERE order_item_id = ANY($1)
ORDER BY id ASC
`, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range notes {
		idx := byID[c.OrderItemID]
		items[idx].Customizations = append(items[idx].Customizations, c)
	}
	return items, nil
}

func (r *postgresRepo) AddCustomization(ctx context.Context, itemID int64, note string) (*domain.Customization, error) {
	out := domain.Customization{OrderItemID: itemID, Note: note}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOpenOrderOfItem(ctx, tx, itemID); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
INSERT INTO customizations (order_item_id, note) VALUES ($1, $2) RETURNING id
`, itemID, note).Scan(&out.ID)
		if db.IsCode(err, db.CodeForeignKeyViolation, "") {
			return fmt.Errorf("%w: order item %d", domain.ErrNotFound, itemID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) UpdateCustomization(ctx context.Context, id int64, note string) (*domain.Customization, error) {
	out := domain.Customization{ID: id, Note: note}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		itemID, err := customizationItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := lockOpenOrderOfItem(ctx, tx, itemID); err != nil {
			return err
		}
		out.OrderItemID = itemID
		_, err = tx.Exec(ctx, `UPDATE customizations SET note = $1 WHERE id = $2`, note, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) DeleteCustomization(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		itemID, err := customizationItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := lockOpenOrderOfItem(ctx, tx, itemID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM customizations WHERE id = $1`, id)
		return err
	})
}

func (r *postgresRepo) GetCustomization(ctx context.Context, id int64) (*domain.Customization, error) {
	list, err := r.queryCustomizations(ctx, `SELECT id, order_item_id, note FROM customizations WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	return &list[0], nil
}

func (r *postgresRepo) ListCustomizations(ctx context.Context) ([]domain.Customization, error) {
	return r.queryCustomizations(ctx, `SELECT id, order_item_id, note FROM customizations ORDER BY id ASC`)
}

func (r *postgresRepo) ListCustomizationsByItem(ctx context.Context, itemID int64) ([]domain.Customization, error) {
	return r.queryCustomizations(ctx, `
SELECT id, order_item_id, note FROM customizations WHERE order_item_id = $1 ORDER BY id ASC
`, itemID)
}

func (r *postgresRepo) queryCustomizations(ctx context.Context, q string, args ...interface{}) ([]domain.Customization, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Customization
	for rows.Next() {
		var c domain.Customization
		if err := rows.Scan(&c.ID, &c.OrderItemID, &c.Note); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// lockOpenOrder takes the row lock that serializes every cart mutation of
// one order, then checks the order is still Open.
func lockOpenOrder(ctx context.Context, tx pgx.Tx, orderID int64) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
		}
		return err
	}
	if domain.OrderStatus(status) != domain.OrderStatusOpen {
		return fmt.Errorf("%w: order %d is %s", domain.ErrOrderNotOpen, orderID, status)
	}
	return nil
}

func lockOpenOrderOfItem(ctx context.Context, tx pgx.Tx, itemID int64) error {
	var orderID int64
	err := tx.QueryRow(ctx, `SELECT order_id FROM order_items WHERE id = $1`, itemID).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: order item %d", domain.ErrNotFound, itemID)
		}
		return err
	}
	return lockOpenOrder(ctx, tx, orderID)
}

func customizationItem(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	var itemID int64
	err := tx.QueryRow(ctx, `SELECT order_item_id FROM customizations WHERE id = $1`, id).Scan(&itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: customization %d", domain.ErrNotFound, id)
		}
		return 0, err
	}
	return itemID, nil
}

func updateOrderTotal(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx, `
UPDATE orders
SET total_cents = COALESCE((
	SELECT SUM(quantity * unit_price_cents)::bigint
	FROM order_items
	WHERE order_id = $1
), 0)
WHERE id = $1
`, orderID)
	if db.IsCode(err, db.CodeNumericOutOfRange, "") {
		return fmt.Errorf("%w: order %d total is out of range", domain.ErrInvalidInput, orderID)
	}
	return err
}
