package httpserver

import (
	"time"

	"tableorder/internal/domain"
	"tableorder/internal/service/query"
)

// Amounts are rendered twice: integer cents for arithmetic and a fixed
// two-decimal string for display.

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	PriceCents  int64     `json:"priceCents"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	SpecialTag  string    `json:"specialTag"`
	ImageURL    string    `json:"imageUrl"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
}

type customizationResponse struct {
	ID          int64  `json:"id"`
	OrderItemID int64  `json:"orderItemId"`
	Note        string `json:"note"`
}

type orderItemResponse struct {
	ID             int64                   `json:"id"`
	OrderID        int64                   `json:"orderId"`
	ProductID      int64                   `json:"productId"`
	Quantity       int                     `json:"quantity"`
	UnitPrice      string                  `json:"unitPrice"`
	UnitPriceCents int64                   `json:"unitPriceCents"`
	LineTotal      string                  `json:"lineTotal"`
	LineTotalCents int64                   `json:"lineTotalCents"`
	CreatedAt      time.Time               `json:"createdAt"`
	Product        *productResponse        `json:"product,omitempty"`
	Customizations []customizationResponse `json:"customizations"`
}

type paymentResponse struct {
	ID          int64      `json:"id"`
	OrderID     int64      `json:"orderId"`
	Method      string     `json:"method"`
	Amount      string     `json:"amount"`
	AmountCents int64      `json:"amountCents"`
	PaidAt      *time.Time `json:"paidAt"`
}

type orderResponse struct {
	ID           int64               `json:"id"`
	SessionToken string              `json:"sessionToken"`
	Status       domain.OrderStatus  `json:"status"`
	TotalAmount  string              `json:"totalAmount"`
	TotalCents   int64               `json:"totalCents"`
	CreatedAt    time.Time           `json:"createdAt"`
	Items        []orderItemResponse `json:"items"`
	Payments     []paymentResponse   `json:"payments"`
	Paid         string              `json:"paid"`
	PaidCents    int64               `json:"paidCents"`
	Balance      string              `json:"balance"`
	BalanceCents int64               `json:"balanceCents"`
}

type sessionResponse struct {
	Token   string `json:"token"`
	URL     string `json:"url"`
	OrderID int64  `json:"orderId"`
}

func toProduct(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       domain.FormatCents(p.PriceCents),
		PriceCents:  p.PriceCents,
		Category:    p.Category,
		Description: p.Description,
		SpecialTag:  p.SpecialTag,
		ImageURL:    p.ImageURL,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt,
	}
}

func toProducts(ps []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

func toCustomization(c domain.Customization) customizationResponse {
	return customizationResponse{ID: c.ID, OrderItemID: c.OrderItemID, Note: c.Note}
}

func toCustomizations(cs []domain.Customization) []customizationResponse {
	out := make([]customizationResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCustomization(c))
	}
	return out
}

func toOrderItem(it domain.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:             it.ID,
		OrderID:        it.OrderID,
		ProductID:      it.ProductID,
		Quantity:       it.Quantity,
		UnitPrice:      domain.FormatCents(it.UnitPriceCents),
		UnitPriceCents: it.UnitPriceCents,
		LineTotal:      domain.FormatCents(it.LineTotalCents()),
		LineTotalCents: it.LineTotalCents(),
		CreatedAt:      it.CreatedAt,
		Customizations: toCustomizations(it.Customizations),
	}
	if it.Product != nil {
		p := toProduct(*it.Product)
		resp.Product = &p
	}
	return resp
}

func toOrderItems(items []domain.OrderItem) []orderItemResponse {
	out := make([]orderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toOrderItem(it))
	}
	return out
}

func toPayment(p domain.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Method:      p.Method,
		Amount:      domain.FormatCents(p.AmountCents),
		AmountCents: p.AmountCents,
		PaidAt:      p.PaidAt,
	}
}

func toPayments(ps []domain.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPayment(p))
	}
	return out
}

func toOrder(o domain.Order) orderResponse {
	paid := domain.SumPayments(o.Payments)
	return orderResponse{
		ID:           o.ID,
		SessionToken: o.SessionToken,
		Status:       o.Status,
		TotalAmount:  domain.FormatCents(o.TotalCents),
		TotalCents:   o.TotalCents,
		CreatedAt:    o.CreatedAt,
		Items:        toOrderItems(o.Items),
		Payments:     toPayments(o.Payments),
		Paid:         domain.FormatCents(paid),
		PaidCents:    paid,
		Balance:      domain.FormatCents(o.TotalCents - paid),
		BalanceCents: o.TotalCents - paid,
	}
}

func toOrderView(v query.OrderView) orderResponse {
	resp := toOrder(v.Order)
	resp.PaidCents = v.PaidCents
	resp.Paid = domain.FormatCents(v.PaidCents)
	resp.BalanceCents = v.BalanceCents
	resp.Balance = domain.FormatCents(v.BalanceCents)
	return resp
}
