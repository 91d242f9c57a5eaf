// Package seed loads the house menu for local development and demos.
package seed

import (
	"context"
	"fmt"

	"tableorder/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Menu is the default steakhouse menu. Image paths point at files served
// from the image directory.
var Menu = []domain.Product{
	{
		Name:        "Premium Ribeye Steak",
		Description: "24 oz ribeye dry-aged for 28 days, grilled to order with house seasoning",
		PriceCents:  189000,
		Category:    "Premium Steaks",
		SpecialTag:  "Chef's Recommendation",
		ImageURL:    "/images/ribeye.jpg",
		IsAvailable: true,
	},
	{
		Name:        "Wagyu Tenderloin",
		Description: "8 oz Japanese A5 wagyu tenderloin served with truffle butter",
		PriceCents:  289000,
		Category:    "Premium Steaks",
		SpecialTag:  "Luxury",
		ImageURL:    "/images/wagyu_tenderloin.jpg",
		IsAvailable: true,
	},
	{
		Name:        "Classic T-Bone",
		Description: "20 oz T-bone with both the strip and the tenderloin",
		PriceCents:  159000,
		Category:    "Traditional Cuts",
		SpecialTag:  "Popular",
		ImageURL:    "/images/tbone.jpg",
		IsAvailable: true,
	},
	{
		Name:        "Grilled Lobster Tail",
		Description: "Fresh Maine lobster tail grilled with garlic herb butter",
		PriceCents:  129000,
		Category:    "Seafood",
		SpecialTag:  "Fresh Daily",
		ImageURL:    "/images/lobster_tail.jpg",
		IsAvailable: true,
	},
	{
		Name:        "Truffle Mac and Cheese",
		Description: "Creamy macaroni with black truffle and aged gruyere",
		PriceCents:  59000,
		Category:    "Sides",
		SpecialTag:  "Signature",
		ImageURL:    "/images/truffle_mac.jpg",
		IsAvailable: true,
	},
	{
		Name:        "Caesar Salad",
		Description: "Romaine, parmesan, croutons and house anchovy dressing",
		PriceCents:  39000,
		Category:    "Starters",
		SpecialTag:  "Classic",
		ImageURL:    "/images/caesar_salad.jpg",
		IsAvailable: true,
	},
}

// Apply upserts every menu product by name, so it can run repeatedly.
func Apply(ctx context.Context, repo ProductWriter) (int, error) {
	for i, p := range Menu {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}
	return len(Menu), nil
}
