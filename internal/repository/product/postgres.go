package product

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

const productColumns = `id, name, price_cents, COALESCE(category, ''), COALESCE(description, ''), COALESCE(special_tag, ''), COALESCE(image_url, ''), is_available, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("product_repo")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (name, price_cents, category, description, special_tag, image_url, is_available)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.Name, p.PriceCents, p.Category, p.Description, p.SpecialTag, p.ImageURL, p.IsAvailable))
	if err != nil {
		if db.IsCode(err, db.CodeUniqueViolation, "") {
			return nil, fmt.Errorf("%w: product %q", domain.ErrAlreadyExists, p.Name)
		}
		r.logger.Error("create", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Info("created", zap.Int64("id", out.ID), zap.String("name", out.Name))
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) error {
	const q = `
UPDATE products
SET name = $2,
    price_cents = $3,
    category = NULLIF($4, ''),
    description = NULLIF($5, ''),
    special_tag = NULLIF($6, ''),
    image_url = NULLIF($7, ''),
    is_available = $8
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, p.ID, p.Name, p.PriceCents, p.Category, p.Description, p.SpecialTag, p.ImageURL, p.IsAvailable)
	if err != nil {
		if db.IsCode(err, db.CodeUniqueViolation, "") {
			return fmt.Errorf("%w: product %q", domain.ErrAlreadyExists, p.Name)
		}
		r.logger.Error("update", zap.Int64("id", p.ID), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("updated", zap.Int64("id", p.ID), zap.Int64("price_cents", p.PriceCents), zap.Bool("available", p.IsAvailable))
	return nil
}

// Delete removes a product. Products referenced by an order item are
// protected by the foreign key and yield ErrInvalidReference.
func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsCode(err, db.CodeForeignKeyViolation, "") {
			return fmt.Errorf("%w: product %d is referenced by order items", domain.ErrInvalidReference, id)
		}
		r.logger.Error("delete", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("deleted", zap.Int64("id", id))
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (name, price_cents, category, description, special_tag, image_url, is_available)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
ON CONFLICT (name) DO UPDATE SET
    price_cents = EXCLUDED.price_cents,
    category = EXCLUDED.category,
    description = EXCLUDED.description,
    special_tag = EXCLUDED.special_tag,
    image_url = COALESCE(EXCLUDED.image_url, products.image_url),
    is_available = EXCLUDED.is_available
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.Name, p.PriceCents, p.Category, p.Description, p.SpecialTag, p.ImageURL, p.IsAvailable))
	if err != nil {
		r.logger.Error("upsert", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Info("upserted", zap.Int64("id", out.ID), zap.String("name", out.Name))
	return out, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Description, &p.SpecialTag, &p.ImageURL, &p.IsAvailable, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
