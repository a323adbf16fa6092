package recommend

import (
	"sort"
	"strings"

	"quickbuy/internal/models"
)

// Score counts the preferences that occur in the product's name or description.
// Duplicate preferences are counted individually. A product missing its name or
// its description scores zero.
func Score(preferences []string, product *models.Product) int {
	if len(preferences) == 0 || product.Name == "" || product.Description == "" {
		return 0
	}

	name := strings.ToLower(product.Name)
	description := strings.ToLower(product.Description)

	score := 0
	for _, pref := range preferences {
		p := strings.ToLower(pref)
		if strings.Contains(name, p) || strings.Contains(description, p) {
			score++
		}
	}
	return score
}

// Scored pairs a product with its similarity score.
type Scored struct {
	Product models.Product
	Score   int
}

// ScoreAll scores every product, preserving input order.
func ScoreAll(preferences []string, products []models.Product) []Scored {
	scored := make([]Scored, len(products))
	for i := range products {
		scored[i] = Scored{Product: products[i], Score: Score(preferences, &products[i])}
	}
	return scored
}

// Rank orders products by descending score. Equal scores keep their input order.
func Rank(preferences []string, products []models.Product) []models.Product {
	scored := ScoreAll(preferences, products)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	ranked := make([]models.Product, len(scored))
	for i, s := range scored {
		ranked[i] = s.Product
	}
	return ranked
}
