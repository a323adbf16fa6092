package repositories

import (
	"errors"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// Create creates a new category in the database.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.Slug == "" {
		category.Slug = models.Slugify(category.Name)
	}
	if err := r.db.Create(category).Error; err != nil {
		return apperror.Internal("failed to create category", err)
	}
	return nil
}

// GetAll returns every category ordered by name.
func (r *GORMCategoryRepository) GetAll() ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.Order("name").Find(&categories).Error; err != nil {
		return nil, apperror.Internal("failed to get categories", err)
	}
	return categories, nil
}

// GetByID retrieves a category by its ID.
func (r *GORMCategoryRepository) GetByID(id string) (*models.Category, error) {
	return r.first("id = ?", id)
}

// GetBySlug retrieves a category by its slug.
func (r *GORMCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	return r.first("slug = ?", slug)
}

func (r *GORMCategoryRepository) first(query string, arg string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category %s not found", arg)
		}
		return nil, apperror.Internal("failed to get category "+arg, err)
	}
	return &category, nil
}
