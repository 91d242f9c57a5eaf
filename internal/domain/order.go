package domain

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order. Open is the only initial
// state; Paid and Cancelled are terminal.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "Open"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

const (
	MaxSessionTokenLen   = 64
	MaxCustomizationLen  = 500
	MaxPaymentMethodLen  = 30
	MaxItemQuantity      = 1<<31 - 1
	DefaultPaymentMethod = "Cash"
)

// ParseOrderStatus matches a status name case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return OrderStatusOpen, true
	case "paid":
		return OrderStatusPaid, true
	case "cancelled", "canceled", "closed":
		return OrderStatusCancelled, true
	}
	return "", false
}

// Terminal reports whether no transition may leave the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// Order is one dining session.
type Order struct {
	ID           int64       `json:"id"`
	SessionToken string      `json:"sessionToken"`
	Status       OrderStatus `json:"status"`
	TotalCents   int64       `json:"totalCents"`
	CreatedAt    time.Time   `json:"createdAt"`
	Items        []OrderItem `json:"items,omitempty"`
	Payments     []Payment   `json:"payments,omitempty"`
}

// OrderItem is one cart line. UnitPriceCents is captured when the item is added.
type OrderItem struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"orderId"`
	ProductID      int64           `json:"productId"`
	Quantity       int             `json:"quantity"`
	UnitPriceCents int64           `json:"unitPriceCents"`
	CreatedAt      time.Time       `json:"createdAt"`
	Product        *Product        `json:"product,omitempty"`
	Customizations []Customization `json:"customizations,omitempty"`
}

// LineTotalCents is quantity times the captured unit price.
func (i OrderItem) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// Customization is a free-text modifier on an order item.
type Customization struct {
	ID          int64  `json:"id"`
	OrderItemID int64  `json:"orderItemId"`
	Note        string `json:"note"`
}

// Payment is a recorded settlement event against an order.
type Payment struct {
	ID          int64      `json:"id"`
	OrderID     int64      `json:"orderId"`
	Method      string     `json:"method"`
	AmountCents int64      `json:"amountCents"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}

// SumItems recomputes an order total from its lines.
func SumItems(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotalCents()
	}
	return total
}

// SumPayments adds up recorded payment amounts.
func SumPayments(payments []Payment) int64 {
	var total int64
	for _, p := range payments {
		total += p.AmountCents
	}
	return total
}
