package handlers

import (
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"quickbuy/internal/apperror"
	"quickbuy/internal/models"
	"quickbuy/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	photos  *services.PhotoService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, photos *services.PhotoService) *ProductHandler {
	return &ProductHandler{
		service: service,
		photos:  photos,
	}
}

// RegisterRoutes registers the catalog routes. Writes go through the admin chain.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, admin ...fiber.Handler) {
	router.Get("/products", h.HandleList)
	router.Get("/product/:slug", h.HandleGetBySlug)
	router.Get("/product-photo/:id", h.HandleGetPhoto)
	router.Post("/product-filters", h.HandleFilter)
	router.Get("/product-count", h.HandleCount)
	router.Get("/product-list/:page", h.HandlePage)
	router.Get("/search/:keyword", h.HandleSearch)
	router.Get("/related-product/:pid/:cid", h.HandleRelated)
	router.Get("/product-category/:slug", h.HandleByCategory)

	router.Post("/product", guarded(admin, h.HandleCreate)...)
	router.Put("/product/:id", guarded(admin, h.HandleUpdate)...)
	router.Delete("/product/:id", guarded(admin, h.HandleDelete)...)
	router.Put("/product-photo/:id", guarded(admin, h.HandleUploadPhoto)...)
}

// guarded returns chain followed by handler in a fresh slice.
func guarded(chain []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(chain)+1)
	return append(append(handlers, chain...), handler)
}

// HandleList returns the newest products.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.service.List(c.QueryInt("limit", services.DefaultListLimit))
	if err != nil {
		return respondError(c, "Error getting products", err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"countTotal": len(products),
		"message":    "All products",
		"products":   products,
	})
}

// HandleGetBySlug returns a single product.
func (h *ProductHandler) HandleGetBySlug(c *fiber.Ctx) error {
	product, err := h.service.GetBySlug(c.Params("slug"))
	if err != nil {
		return respondError(c, "Error getting single product", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Single product fetched",
		"product": product,
	})
}

// HandleGetPhoto writes the raw photo bytes with their content type.
func (h *ProductHandler) HandleGetPhoto(c *fiber.Ctx) error {
	photo, err := h.photos.FetchPhoto(c.Params("id"))
	if err != nil {
		return respondError(c, "Error getting product photo", err)
	}
	c.Set(fiber.HeaderContentType, photo.ContentType)
	return c.Status(fiber.StatusOK).Send(photo.Data)
}

type filterRequest struct {
	Categories []string      `json:"categories"`
	PriceRange []interface{} `json:"priceRange"`
}

// HandleFilter returns products matching the posted category and price criteria.
func (h *ProductHandler) HandleFilter(c *fiber.Ctx) error {
	var req filterRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, "Invalid request body", apperror.Validation("%v", err))
		}
	}

	priceRange := make([]float64, 0, len(req.PriceRange))
	for _, bound := range req.PriceRange {
		if bound == nil {
			return respondError(c, "Error while filtering products", apperror.Validation("price range bounds must not be null"))
		}
		v, err := cast.ToFloat64E(bound)
		if err != nil {
			return respondError(c, "Error while filtering products", apperror.Validation("invalid price bound %v", bound))
		}
		priceRange = append(priceRange, v)
	}

	products, err := h.service.Filter(req.Categories, priceRange)
	if err != nil {
		return respondError(c, "Error while filtering products", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleCount returns the catalog size.
func (h *ProductHandler) HandleCount(c *fiber.Ctx) error {
	total, err := h.service.Count()
	if err != nil {
		return respondError(c, "Error in product count", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"total":   total,
	})
}

// HandlePage returns one page of the catalog.
func (h *ProductHandler) HandlePage(c *fiber.Ctx) error {
	page, err := c.ParamsInt("page")
	if err != nil {
		return respondError(c, "Error in per page", apperror.Validation("page must be a number"))
	}
	products, err := h.service.Paginate(page, c.QueryInt("perPage", services.DefaultPerPage))
	if err != nil {
		return respondError(c, "Error in per page", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleSearch returns products containing the keyword.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	keyword, err := url.PathUnescape(c.Params("keyword"))
	if err != nil {
		return respondError(c, "Error in search product API", apperror.Validation("malformed keyword"))
	}
	products, err := h.service.Search(keyword)
	if err != nil {
		return respondError(c, "Error in search product API", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleRelated returns other products of the same category.
func (h *ProductHandler) HandleRelated(c *fiber.Ctx) error {
	products, err := h.service.Related(c.Params("pid"), c.Params("cid"), c.QueryInt("limit", services.DefaultRelatedLimit))
	if err != nil {
		return respondError(c, "Error while getting related product", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}

// HandleByCategory returns a category and its products.
func (h *ProductHandler) HandleByCategory(c *fiber.Ctx) error {
	category, products, err := h.service.ByCategory(c.Params("slug"))
	if err != nil {
		return respondError(c, "Error while getting products", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"category": category,
		"products": products,
	})
}

// HandleCreate creates a product from a JSON or multipart body.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	input, upload, err := parseProductRequest(c)
	if err != nil {
		return respondError(c, "Error in creating product", err)
	}
	product, err := h.service.Create(input, upload)
	if err != nil {
		return respondError(c, "Error in creating product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// HandleUpdate replaces a product from a JSON or multipart body.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	input, upload, err := parseProductRequest(c)
	if err != nil {
		return respondError(c, "Error in updating product", err)
	}
	product, err := h.service.Update(c.Params("id"), input, upload)
	if err != nil {
		return respondError(c, "Error in updating product", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

// HandleDelete removes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("id")); err != nil {
		return respondError(c, "Error while deleting product", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// HandleUploadPhoto replaces the photo of a product. The payload is either the
// "photo" part of a multipart form or the raw request body.
func (h *ProductHandler) HandleUploadPhoto(c *fiber.Ctx) error {
	var upload *models.Photo
	var err error
	if isMultipart(c) {
		upload, err = readPhotoPart(c)
	} else if len(c.Body()) > 0 {
		upload = &models.Photo{
			Data:        append([]byte(nil), c.Body()...),
			ContentType: string(c.Request().Header.ContentType()),
		}
	}
	if err != nil {
		return respondError(c, "Error in uploading photo", err)
	}
	if upload == nil {
		return respondError(c, "Error in uploading photo", apperror.Validation("photo is required"))
	}

	if err := h.photos.SavePhoto(c.Params("id"), upload.Data, upload.ContentType); err != nil {
		return respondError(c, "Error in uploading photo", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Photo updated successfully",
	})
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// parseProductRequest reads the product fields and an optional photo part.
func parseProductRequest(c *fiber.Ctx) (models.ProductInput, *models.Photo, error) {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return input, nil, apperror.Validation("invalid request body: %v", err)
	}
	if !isMultipart(c) {
		return input, nil, nil
	}
	upload, err := readPhotoPart(c)
	return input, upload, err
}

// readPhotoPart returns the "photo" file of a multipart form, or nil when absent.
func readPhotoPart(c *fiber.Ctx) (*models.Photo, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("invalid multipart form: %v", err)
	}
	files := form.File["photo"]
	if len(files) == 0 {
		return nil, nil
	}
	return readFile(files[0])
}

func readFile(fh *multipart.FileHeader) (*models.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Internal("failed to open uploaded photo", err)
	}
	defer f.Close()

	// One byte past the limit is enough to reject oversized uploads.
	data, err := io.ReadAll(io.LimitReader(f, services.MaxPhotoBytes+1))
	if err != nil {
		return nil, apperror.Internal("failed to read uploaded photo", err)
	}
	return &models.Photo{Data: data, ContentType: fh.Header.Get(fiber.HeaderContentType)}, nil
}
