package services

import (
	"fmt"

	"quickbuy/internal/apperror"
	"quickbuy/internal/metrics"
	"quickbuy/internal/models"
	"quickbuy/internal/repositories"

	"github.com/gabriel-vasile/mimetype"
)

// MaxPhotoBytes is the largest accepted photo payload.
const MaxPhotoBytes = 1_000_000

// PhotoService validates, stores and serves product photo payloads.
type PhotoService struct {
	repo repositories.ProductRepository
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(repo repositories.ProductRepository) *PhotoService {
	return &PhotoService{repo: repo}
}

// AttachPhoto validates the payload and sets it on product, replacing any previous one.
// A missing content type is sniffed from the bytes.
func (s *PhotoService) AttachPhoto(product *models.Product, data []byte, contentType string) error {
	if len(data) == 0 {
		metrics.PhotosRejected.Inc()
		return apperror.Validation("photo is empty")
	}
	if len(data) > MaxPhotoBytes {
		metrics.PhotosRejected.Inc()
		return apperror.Validation("photo should be less than 1 MB (got %d bytes)", len(data))
	}
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	product.SetPhoto(models.Photo{Data: data, ContentType: contentType})
	metrics.PhotoBytes.Observe(float64(len(data)))
	return nil
}

// SavePhoto attaches the payload to an existing product and persists it.
func (s *PhotoService) SavePhoto(productID string, data []byte, contentType string) error {
	var staged models.Product
	if err := s.AttachPhoto(&staged, data, contentType); err != nil {
		return err
	}
	photo, _ := staged.Photo()
	if err := s.repo.UpdatePhoto(productID, photo); err != nil {
		return fmt.Errorf("failed to save photo for product %s: %w", productID, err)
	}
	return nil
}

// FetchPhoto returns the stored payload of a product.
func (s *PhotoService) FetchPhoto(productID string) (models.Photo, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return models.Photo{}, err
	}
	photo, ok := product.Photo()
	if !ok {
		return models.Photo{}, apperror.NotFound("product %s has no photo", productID)
	}
	return photo, nil
}
