package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"quickbuy/internal/apperror"
	"quickbuy/internal/events"
	"quickbuy/internal/metrics"
	"quickbuy/internal/models"
	"quickbuy/internal/repositories"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultListLimit    = 12
	DefaultPerPage      = 8
	DefaultRelatedLimit = 3
	MaxPerPage          = 100
)

// listing is the projection shared by every multi-product read.
var listing = repositories.QueryOptions{OmitPhoto: true, WithCategory: true, NewestFirst: true}

// ProductService handles catalog queries and product lifecycle.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	photos     *PhotoService
	events     events.Publisher
	validate   *validator.Validate
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, photos *PhotoService, publisher events.Publisher) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		photos:     photos,
		events:     publisher,
		validate:   newValidator(),
	}
}

// List returns the newest products, at most limit (DefaultListLimit when limit <= 0).
func (s *ProductService) List(limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	metrics.RecordQuery("list")
	opts := listing
	opts.Limit = limit
	return s.repo.Find(repositories.Filter{}, opts)
}

// BuildFilter turns category and price criteria into a filter. An empty
// category set or an absent range adds no clause.
func BuildFilter(categories []string, priceRange []float64) (repositories.Filter, error) {
	var f repositories.Filter

	for _, id := range categories {
		if id = strings.TrimSpace(id); id != "" {
			f.CategoryIDs = append(f.CategoryIDs, id)
		}
	}

	switch len(priceRange) {
	case 0:
	case 2:
		lo, hi := priceRange[0], priceRange[1]
		if lo < 0 || hi < 0 {
			return repositories.Filter{}, apperror.Validation("price range bounds must be non-negative")
		}
		if lo > hi {
			return repositories.Filter{}, apperror.Validation("price range minimum %.2f exceeds maximum %.2f", lo, hi)
		}
		f.Price = &repositories.PriceRange{Min: lo, Max: hi}
	default:
		return repositories.Filter{}, apperror.Validation("price range needs exactly two bounds, got %d", len(priceRange))
	}
	return f, nil
}

// Filter returns products matching the category and price criteria.
func (s *ProductService) Filter(categories []string, priceRange []float64) ([]models.Product, error) {
	f, err := BuildFilter(categories, priceRange)
	if err != nil {
		return nil, err
	}
	metrics.RecordQuery("filter")
	return s.repo.Find(f, listing)
}

// Search returns products whose name or description contains keyword, ignoring case.
func (s *ProductService) Search(keyword string) ([]models.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperror.Validation("search keyword is required")
	}
	metrics.RecordQuery("search")
	return s.repo.Find(repositories.Filter{Keyword: keyword}, listing)
}

// Related returns up to limit other products of the same category.
func (s *ProductService) Related(productID, categoryID string, limit int) ([]models.Product, error) {
	if categoryID == "" {
		return nil, apperror.Validation("category is required")
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	metrics.RecordQuery("related")
	opts := listing
	opts.NewestFirst = false
	opts.Limit = limit
	return s.repo.Find(repositories.Filter{CategoryIDs: []string{categoryID}, ExcludeID: productID}, opts)
}

// ByCategory resolves a category by slug and returns it with all of its products.
func (s *ProductService) ByCategory(slug string) (*models.Category, []models.Product, error) {
	category, err := s.categories.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordQuery("by_category")
	products, err := s.repo.Find(repositories.Filter{CategoryIDs: []string{category.ID}}, listing)
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}

// Paginate returns page (1-based) of the newest-first catalog.
func (s *ProductService) Paginate(page, perPage int) ([]models.Product, error) {
	if page < 1 {
		return nil, apperror.Validation("page must be 1 or greater, got %d", page)
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		return nil, apperror.Validation("perPage must be at most %d, got %d", MaxPerPage, perPage)
	}
	if page-1 > math.MaxInt/perPage {
		return nil, apperror.Validation("page %d is out of range", page)
	}
	metrics.RecordQuery("paginate")
	opts := listing
	opts.WithCategory = false
	opts.Skip = (page - 1) * perPage
	opts.Limit = perPage
	return s.repo.Find(repositories.Filter{}, opts)
}

// Count returns the unfiltered number of products.
func (s *ProductService) Count() (int64, error) {
	metrics.RecordQuery("count")
	return s.repo.Count()
}

// GetBySlug returns a single product with its category.
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	metrics.RecordQuery("get")
	return s.repo.GetBySlug(slug)
}

// Create validates input, optionally attaches a photo, and stores a new product.
func (s *ProductService) Create(input models.ProductInput, upload *models.Photo) (*models.Product, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{}
	product.Apply(input)
	if upload != nil {
		if err := s.photos.AttachPhoto(product, upload.Data, upload.ContentType); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", product.Name, err)
	}

	s.emit(events.ProductCreated, product)
	product.StripPhoto()
	return product, nil
}

// Update replaces every field of an existing product. The stored photo is kept
// unless upload carries a new one.
func (s *ProductService) Update(id string, input models.ProductInput, upload *models.Photo) (*models.Product, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	product.Apply(input)
	if upload != nil {
		if err := s.photos.AttachPhoto(product, upload.Data, upload.ContentType); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	s.emit(events.ProductUpdated, product)
	product.StripPhoto()
	return product, nil
}

// Delete removes a product by its ID. Its category is left untouched.
func (s *ProductService) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.emit(events.ProductDeleted, &models.Product{ID: id})
	return nil
}

func (s *ProductService) checkInput(input models.ProductInput) error {
	if err := validateStruct(s.validate, input); err != nil {
		return err
	}
	if _, err := s.categories.GetByID(input.CategoryID); err != nil {
		return err
	}
	return nil
}

func (s *ProductService) emit(routingKey string, product *models.Product) {
	events.Emit(s.events, routingKey, events.ProductEvent{
		ProductID:  product.ID,
		Slug:       product.Slug,
		CategoryID: product.CategoryID,
		OccurredAt: time.Now().UTC(),
	})
}
