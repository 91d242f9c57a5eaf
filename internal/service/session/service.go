// Package session owns the dining-session lifecycle: issuing a token with a
// fresh Open order, resolving a token back to its order and closing it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tableorder/internal/domain"
	"tableorder/internal/events"
	"tableorder/internal/logging"
)

const maxTokenAttempts = 3

type orderRepo interface {
	Create(ctx context.Context, token string) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetOpenByToken(ctx context.Context, token string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	CloseOpen(ctx context.Context, id int64, to domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	orders   orderRepo
	events   events.Publisher
	logger   *zap.Logger
	newToken func() (string, error)
}

func New(orders orderRepo, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		orders:   orders,
		events:   publisher,
		logger:   logging.OrNop(logger).Named("session"),
		newToken: NewToken,
	}
}

// StartSession creates an Open order bound to a new token. A token collision
// is retried with a fresh token a bounded number of times.
func (s *Service) StartSession(ctx context.Context) (*domain.Order, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return nil, err
		}
		order, err := s.orders.Create(ctx, token)
		if errors.Is(err, domain.ErrTokenCollision) {
			s.logger.Warn("token collision", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		s.logger.Info("session started", zap.Int64("order_id", order.ID))
		s.events.Publish(ctx, events.Event{Type: events.SessionStarted, OrderID: order.ID})
		return order, nil
	}
	return nil, fmt.Errorf("start session: %w after %d attempts", domain.ErrTokenCollision, maxTokenAttempts)
}

// ResolveSession returns the Open order bound to token. Unknown tokens and
// tokens of closed orders both yield domain.ErrNotFound.
func (s *Service) ResolveSession(ctx context.Context, token string) (*domain.Order, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > domain.MaxSessionTokenLen {
		return nil, domain.ErrNotFound
	}
	return s.orders.GetOpenByToken(ctx, token)
}

// CloseSession moves an Open order to Paid or Cancelled.
func (s *Service) CloseSession(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	to, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	if !to.Terminal() {
		return nil, fmt.Errorf("%w: cannot move an order to %s", domain.ErrInvalidTransition, to)
	}
	order, err := s.orders.CloseOpen(ctx, orderID, to)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session closed", zap.Int64("order_id", order.ID), zap.String("status", string(order.Status)))
	s.events.Publish(ctx, events.Event{
		Type:    events.SessionClosed,
		OrderID: order.ID,
		Data: map[string]interface{}{
			"status":     order.Status,
			"totalCents": order.TotalCents,
		},
	})
	return order, nil
}

func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// Purge deletes an order with its items, customizations and payments.
func (s *Service) Purge(ctx context.Context, orderID int64) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	s.logger.Info("order purged", zap.Int64("order_id", orderID))
	s.events.Publish(ctx, events.Event{Type: events.OrderPurged, OrderID: orderID})
	return nil
}
