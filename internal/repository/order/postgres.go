package order

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

const orderColumns = `id, session_token, status, total_cents, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("order_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, token string) (*domain.Order, error) {
	q := `
INSERT INTO orders (session_token, status, total_cents)
VALUES ($1, 'Open', 0)
RETURNING ` + orderColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q, token))
	if err != nil {
		if db.IsCode(err, db.CodeUniqueViolation, "orders_session_token_key") {
			return nil, domain.ErrTokenCollision
		}
		r.logger.Error("create", zap.Error(err))
		return nil, err
	}
	r.logger.Info("created", zap.Int64("order_id", o.ID))
	return o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.fetch(ctx, q, id)
}

func (r *postgresRepo) GetOpenByToken(ctx context.Context, token string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE session_token = $1 AND status = 'Open'`
	return r.fetch(ctx, q, token)
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

// CloseOpen is a conditional update, so two concurrent closes cannot both win.
func (r *postgresRepo) CloseOpen(ctx context.Context, id int64, to domain.OrderStatus) (*domain.Order, error) {
	q := `
UPDATE orders
SET status = $2
WHERE id = $1 AND status = 'Open'
RETURNING ` + orderColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id, string(to)))
	if err == nil {
		r.logger.Info("closed", zap.Int64("order_id", id), zap.String("status", string(to)))
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: order %d is %s", domain.ErrInvalidTransition, id, current.Status)
}

// Delete purges an order. Items, their customizations and payments cascade.
func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("purged", zap.Int64("order_id", id))
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(&o.ID, &o.SessionToken, &status, &o.TotalCents, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
