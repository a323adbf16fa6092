package repositories

import (
	"sort"
	"sync"
	"time"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products   map[string]models.Product
	categories CategoryRepository
	mu         sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
// categories resolves Category for QueryOptions.WithCategory and may be nil.
func NewMockProductRepository(categories CategoryRepository) *MockProductRepository {
	return &MockProductRepository{
		products:   make(map[string]models.Product),
		categories: categories,
	}
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFound("product with ID %s not found", id)
	}
	return &product, nil
}

// GetBySlug returns a product by its slug, without photo.
func (r *MockProductRepository) GetBySlug(slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Slug == slug {
			p.StripPhoto()
			r.attachCategory(&p)
			return &p, nil
		}
	}
	return nil, apperror.NotFound("product %s not found", slug)
}

// Find evaluates the filter over every stored product.
func (r *MockProductRepository) Find(filter Filter, opts QueryOptions) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Matches(&p) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		if opts.NewestFirst {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	matched = window(matched, opts.Skip, opts.Limit)

	for i := range matched {
		if opts.OmitPhoto {
			matched[i].StripPhoto()
		}
		if opts.WithCategory {
			r.attachCategory(&matched[i])
		}
	}
	return matched, nil
}

func (r *MockProductRepository) attachCategory(p *models.Product) {
	if r.categories == nil || p.CategoryID == "" {
		return
	}
	if c, err := r.categories.GetByID(p.CategoryID); err == nil {
		p.Category = c
	}
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	stored := *product
	stored.Category = nil
	r.products[product.ID] = stored
	return nil
}

// Update replaces an existing product, keeping its creation time.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperror.NotFound("product with ID %s not found for update", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	stored := *product
	stored.Category = nil
	r.products[product.ID] = stored
	return nil
}

// UpdatePhoto overwrites the photo payload of a product.
func (r *MockProductRepository) UpdatePhoto(id string, photo models.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return apperror.NotFound("product with ID %s not found", id)
	}
	product.SetPhoto(photo)
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return apperror.NotFound("product with ID %s not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

// Count returns the number of stored products.
func (r *MockProductRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}
