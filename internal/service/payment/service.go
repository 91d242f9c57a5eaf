// Package payment records settlement events against orders. Recording a
// payment never changes the order total or status; closing the session is a
// separate step.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"tableorder/internal/domain"
	"tableorder/internal/events"
	"tableorder/internal/logging"
)

type paymentRepo interface {
	Create(ctx context.Context, p domain.Payment) (*domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
	Delete(ctx context.Context, id int64) error
}

type orderRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

type Service struct {
	repo   paymentRepo
	orders orderRepo
	events events.Publisher
	logger *zap.Logger
	now    func() time.Time
}

func New(repo paymentRepo, orders orderRepo, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:   repo,
		orders: orders,
		events: publisher,
		logger: logging.OrNop(logger).Named("payment"),
		now:    time.Now,
	}
}

func (s *Service) RecordPayment(ctx context.Context, orderID int64, method string, amountCents int64) (*domain.Payment, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = domain.DefaultPaymentMethod
	}
	if utf8.RuneCountInString(method) > domain.MaxPaymentMethodLen {
		return nil, fmt.Errorf("%w: method longer than %d characters", domain.ErrInvalidInput, domain.MaxPaymentMethodLen)
	}
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	paidAt := s.now().UTC()
	p, err := s.repo.Create(ctx, domain.Payment{
		OrderID:     orderID,
		Method:      method,
		AmountCents: amountCents,
		PaidAt:      &paidAt,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded",
		zap.Int64("order_id", orderID),
		zap.Int64("payment_id", p.ID),
		zap.String("method", p.Method),
		zap.Int64("amount_cents", p.AmountCents))
	s.events.Publish(ctx, events.Event{
		Type:    events.PaymentRecorded,
		OrderID: orderID,
		Data: map[string]interface{}{
			"paymentId":   p.ID,
			"method":      p.Method,
			"amountCents": p.AmountCents,
		},
	})
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("payment deleted", zap.Int64("order_id", p.OrderID), zap.Int64("payment_id", id))
	s.events.Publish(ctx, events.Event{
		Type:    events.PaymentDeleted,
		OrderID: p.OrderID,
		Data:    map[string]interface{}{"paymentId": id},
	})
	return nil
}
