package services

import (
	"fmt"
	"strings"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"
	"quickbuy/internal/repositories"
)

// CategoryService exposes the read side of categories and seeding.
type CategoryService struct {
	repo repositories.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns every category ordered by name.
func (s *CategoryService) List() ([]models.Category, error) {
	return s.repo.GetAll()
}

// GetBySlug returns a single category.
func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	return s.repo.GetBySlug(slug)
}

// Create stores a category named name, deriving its slug.
func (s *CategoryService) Create(name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}
	category := &models.Category{Name: name, Slug: models.Slugify(name)}
	if existing, err := s.repo.GetBySlug(category.Slug); err == nil {
		return existing, apperror.Conflict("category %s already exists", category.Slug)
	}
	if err := s.repo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category %s: %w", name, err)
	}
	return category, nil
}
