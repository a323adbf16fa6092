package services

import (
	"quickbuy/internal/metrics"
	"quickbuy/internal/models"
	"quickbuy/internal/recommend"
	"quickbuy/internal/repositories"
)

// RecommendationService ranks the catalog against a user's preference window.
type RecommendationService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(users repositories.UserRepository, products repositories.ProductRepository) *RecommendationService {
	return &RecommendationService{users: users, products: products}
}

// Recommend returns the whole catalog ordered by similarity to the user's
// preferences. Products with equal scores stay newest first.
func (s *RecommendationService) Recommend(userID string) ([]models.Product, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	metrics.RecordQuery("recommend")
	products, err := s.products.Find(repositories.Filter{}, listing)
	if err != nil {
		return nil, err
	}
	metrics.RecommendationCandidates.Observe(float64(len(products)))

	return recommend.Rank(user.Preferences, products), nil
}
