package main

import (
	"fmt"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"
	"quickbuy/internal/services"

	"go.uber.org/zap"
)

type seedProduct struct {
	name, description, category string
	price                       float64
	quantity                    int
	shipping                    bool
}

var seedProducts = []seedProduct{
	{"Red Cotton Shirt", "Soft cotton shirt in bright red", "Clothing", 24.90, 40, true},
	{"Linen Summer Shirt", "Breathable linen shirt for warm days", "Clothing", 39.00, 25, true},
	{"Denim Jacket", "Classic blue denim jacket", "Clothing", 79.50, 10, true},
	{"Wireless Mouse", "Ergonomic wireless mouse", "Electronics", 25.00, 50, true},
	{"Mechanical Keyboard", "Mechanical keyboard with red switches", "Electronics", 75.00, 25, false},
	{"Ceramic Mug", "Hand glazed ceramic mug", "Home", 12.00, 100, false},
}

// seedCatalog creates demo categories and products into an empty catalog.
func seedCatalog(categories *services.CategoryService, products *services.ProductService) error {
	total, err := products.Count()
	if err != nil {
		return fmt.Errorf("failed to count products before seeding: %w", err)
	}
	if total > 0 {
		zap.S().Infof("Catalog already holds %d products, skipping seed", total)
		return nil
	}

	ids := make(map[string]string)
	for _, p := range seedProducts {
		if _, ok := ids[p.category]; ok {
			continue
		}
		category, err := categories.Create(p.category)
		if err != nil && apperror.KindOf(err) != apperror.KindConflict {
			return fmt.Errorf("failed to seed category %s: %w", p.category, err)
		}
		ids[p.category] = category.ID
	}

	for _, p := range seedProducts {
		price, quantity := p.price, p.quantity
		product, err := products.Create(models.ProductInput{
			Name:        p.name,
			Description: p.description,
			Price:       &price,
			CategoryID:  ids[p.category],
			Quantity:    &quantity,
			Shipping:    p.shipping,
		}, nil)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
		zap.S().Debugf("Seeded product: %s (ID: %s)", product.Name, product.ID)
	}
	zap.S().Infof("Seeded %d products in %d categories", len(seedProducts), len(ids))
	return nil
}
