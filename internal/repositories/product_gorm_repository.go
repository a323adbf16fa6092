package repositories

import (
	"errors"
	"strings"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var photoColumns = []string{"photo_data", "photo_content_type"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product, including its photo payload.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product with ID %s not found", id)
		}
		return nil, apperror.Internal("failed to get product by ID "+id, err)
	}
	return &product, nil
}

// GetBySlug retrieves a product by slug with its category and without the photo payload.
func (r *GORMProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.Omit(photoColumns...).Preload("Category").First(&product, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", slug)
		}
		return nil, apperror.Internal("failed to get product by slug "+slug, err)
	}
	return &product, nil
}

// Find runs a filtered query shaped by opts.
// Outside postgres the keyword clause is evaluated after the query, since
// SQLite's LOWER folds ASCII only; skip and limit then follow it.
func (r *GORMProductRepository) Find(filter Filter, opts QueryOptions) ([]models.Product, error) {
	foldKeyword := filter.Keyword != "" && !r.foldsUnicode()

	tx := r.applyFilter(r.db.Model(&models.Product{}), filter)
	if opts.OmitPhoto {
		tx = tx.Omit(photoColumns...)
	}
	if opts.WithCategory {
		tx = tx.Preload("Category")
	}
	if opts.NewestFirst {
		tx = tx.Order("created_at DESC")
	}
	if !foldKeyword {
		if opts.Skip > 0 {
			tx = tx.Offset(opts.Skip)
		}
		if opts.Limit > 0 {
			tx = tx.Limit(opts.Limit)
		}
	}

	products := []models.Product{}
	if err := tx.Find(&products).Error; err != nil {
		return nil, apperror.Internal("failed to query products", err)
	}
	if !foldKeyword {
		return products, nil
	}

	keyword := Filter{Keyword: filter.Keyword}
	matched := products[:0]
	for i := range products {
		if keyword.Matches(&products[i]) {
			matched = append(matched, products[i])
		}
	}
	return window(matched, opts.Skip, opts.Limit), nil
}

func (r *GORMProductRepository) foldsUnicode() bool {
	return r.db.Dialector.Name() == "postgres"
}

func (r *GORMProductRepository) applyFilter(tx *gorm.DB, f Filter) *gorm.DB {
	if len(f.CategoryIDs) > 0 {
		tx = tx.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.Price != nil {
		tx = tx.Where("price >= ? AND price <= ?", f.Price.Min, f.Price.Max)
	}
	if f.Keyword != "" && r.foldsUnicode() {
		pattern := "%" + likeEscaper.Replace(f.Keyword) + "%"
		tx = tx.Where(`(name ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.ExcludeID != "" {
		tx = tx.Where("id <> ?", f.ExcludeID)
	}
	return tx
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(product).Error; err != nil {
		return apperror.Internal("failed to create product", err)
	}
	return nil
}

// Update replaces every column of an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(product).Select("*").Omit(clause.Associations, "created_at").Updates(product)
	if res.Error != nil {
		return apperror.Internal("failed to update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product with ID %s not found for update", product.ID)
	}
	return nil
}

// UpdatePhoto overwrites the inline photo payload of a product.
func (r *GORMProductRepository) UpdatePhoto(id string, photo models.Photo) error {
	res := r.db.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"photo_data":         photo.Data,
		"photo_content_type": photo.ContentType,
	})
	if res.Error != nil {
		return apperror.Internal("failed to store product photo", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product with ID %s not found", id)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperror.Internal("failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product with ID %s not found for deletion", id)
	}
	return nil
}

// Count returns the total number of products.
func (r *GORMProductRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, apperror.Internal("failed to count products", err)
	}
	return total, nil
}
