package domain

import "time"

const (
	MaxProductNameLen        = 200
	MaxProductCategoryLen    = 100
	MaxProductDescriptionLen = 1000
	MaxProductTagLen         = 100
	MaxProductImageLen       = 500
)

// Product is a sellable menu entry.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PriceCents  int64     `json:"priceCents"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	SpecialTag  string    `json:"specialTag,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
}
