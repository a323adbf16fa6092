package repositories

import (
	"quickbuy/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Find(filter Filter, opts QueryOptions) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	UpdatePhoto(id string, photo models.Photo) error
	Delete(id string) error
	Count() (int64, error)
}
