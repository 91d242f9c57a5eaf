package payment

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

const paymentColumns = `id, order_id, payment_method, amount_cents, paid_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("payment_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	q := `
INSERT INTO payments (order_id, payment_method, amount_cents, paid_at)
VALUES ($1, $2, $3, $4)
RETURNING ` + paymentColumns
	out, err := scanPayment(r.pool.QueryRow(ctx, q, p.OrderID, p.Method, p.AmountCents, p.PaidAt))
	if err != nil {
		if db.IsCode(err, db.CodeForeignKeyViolation, "") {
			return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, p.OrderID)
		}
		r.logger.Error("create", zap.Int64("order_id", p.OrderID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("recorded",
		zap.Int64("payment_id", out.ID),
		zap.Int64("order_id", out.OrderID),
		zap.String("method", out.Method),
		zap.Int64("amount_cents", out.AmountCents))
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY id ASC`, orderID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id ASC`)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("deleted", zap.Int64("payment_id", id))
	return nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.AmountCents, &p.PaidAt); err != nil {
		return nil, err
	}
	return &p, nil
}
