package handlers_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"quickbuy/internal/handlers"
	"quickbuy/internal/middleware"
	"quickbuy/internal/models"
	"quickbuy/internal/repositories"
	"quickbuy/internal/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test_jwt_secret"

type testEnv struct {
	app        *fiber.App
	auth       *services.AuthService
	adminToken string
	shirts     *models.Category
	mugs       *models.Category
	products   map[string]*models.Product
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}, &models.User{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	photoService := services.NewPhotoService(productRepo)
	productService := services.NewProductService(productRepo, categoryRepo, photoService, nil)
	categoryService := services.NewCategoryService(categoryRepo)
	preferenceService := services.NewPreferenceService(userRepo, nil)
	recommendationService := services.NewRecommendationService(userRepo, productRepo)
	authService := services.NewAuthService(userRepo, testJWTSecret)

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, photoService).
		RegisterRoutes(apiV1, middleware.AuthRequired(authService), middleware.AdminRequired())
	handlers.NewPreferenceHandler(preferenceService, recommendationService).RegisterRoutes(apiV1)

	env := &testEnv{app: app, auth: authService, products: map[string]*models.Product{}}

	env.shirts, err = categoryService.Create("Shirts")
	require.NoError(t, err)
	env.mugs, err = categoryService.Create("Mugs")
	require.NoError(t, err)

	for _, p := range []struct {
		name, description string
		price             float64
		category          string
	}{
		{"Red Shirt", "plain cotton", 10, env.shirts.ID},
		{"Polo", "Shirt with a collar", 20, env.shirts.ID},
		{"Linen Tee", "light and airy", 30, env.shirts.ID},
		{"Mug", "ceramic", 5, env.mugs.ID},
	} {
		price, quantity := p.price, 3
		created, err := productService.Create(models.ProductInput{
			Name: p.name, Description: p.description, Price: &price, CategoryID: p.category, Quantity: &quantity,
		}, nil)
		require.NoError(t, err)
		env.products[created.Slug] = created
	}

	_, err = authService.EnsureAdmin("Admin", "admin@example.com", "admin-secret")
	require.NoError(t, err)
	env.adminToken, _, err = authService.LoginUser("admin@example.com", "admin-secret")
	require.NoError(t, err)

	return env
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	zap.ReplaceGlobals(zap.NewNop())
	os.Exit(m.Run())
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func productNames(t *testing.T, body map[string]interface{}, key string) []string {
	t.Helper()
	list, ok := body[key].([]interface{})
	require.True(t, ok, "missing %s in %v", key, body)
	names := make([]string, len(list))
	for i, item := range list {
		p := item.(map[string]interface{})
		assert.NotContains(t, p, "photoData")
		names[i] = p["name"].(string)
	}
	return names
}

func registerUser(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	status, body := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
		"phone":    "555-0100",
		"address":  "1 Market St",
	}, "")
	require.Equal(t, http.StatusCreated, status, body)
	user := body["user"].(map[string]interface{})
	assert.NotContains(t, user, "password")
	return user["id"].(string)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)
	registerUser(t, env, "test@example.com")

	// Duplicate registration
	status, body := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Again", "email": "test@example.com", "password": "password123", "phone": "1", "address": "x",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])

	// Invalid payload
	status, _ = env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "test@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := env.auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", claims["email"])

	status, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "test@example.com", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthRegisterIgnoresClientSuppliedID(t *testing.T) {
	env := setupApp(t)
	first := registerUser(t, env, "first@example.com")

	status, body := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"id": first, "name": "Second", "email": "second@example.com", "password": "password123",
		"phone": "1", "address": "x", "role": 1, "preferences": []string{"admin"},
	}, "")
	require.Equal(t, http.StatusCreated, status, body)
	user := body["user"].(map[string]interface{})
	assert.NotEqual(t, first, user["id"])
	assert.Empty(t, user["preferences"])

	status, body = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "first@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "first@example.com", body["user"].(map[string]interface{})["email"])
}

func TestProductWritesRequireAdmin(t *testing.T) {
	env := setupApp(t)
	input := map[string]interface{}{
		"name": "Blue Shirt", "description": "oxford", "price": 15, "category": env.shirts.ID, "quantity": 2,
	}

	status, _ := env.do(t, http.MethodPost, "/api/v1/product", input, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	registerUser(t, env, "shopper@example.com")
	userToken, _, err := env.auth.LoginUser("shopper@example.com", "password123")
	require.NoError(t, err)
	status, _ = env.do(t, http.MethodPost, "/api/v1/product", input, userToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.do(t, http.MethodPost, "/api/v1/product", input, env.adminToken)
	require.Equal(t, http.StatusCreated, status, body)
	created := body["product"].(map[string]interface{})
	assert.Equal(t, "blue-shirt", created["slug"])

	status, body = env.do(t, http.MethodGet, "/api/v1/product/blue-shirt", nil, "")
	require.Equal(t, http.StatusOK, status)
	product := body["product"].(map[string]interface{})
	assert.Equal(t, "Shirts", product["category"].(map[string]interface{})["name"])

	input["name"] = "Navy Shirt"
	id := created["id"].(string)
	status, body = env.do(t, http.MethodPut, "/api/v1/product/"+id, input, env.adminToken)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "navy-shirt", body["product"].(map[string]interface{})["slug"])

	status, _ = env.do(t, http.MethodPut, "/api/v1/product/ghost", input, env.adminToken)
	assert.Equal(t, http.StatusNotFound, status)

	input["category"] = "no-such-category"
	status, _ = env.do(t, http.MethodPost, "/api/v1/product", input, env.adminToken)
	assert.Equal(t, http.StatusNotFound, status)

	delete(input, "price")
	input["category"] = env.shirts.ID
	status, body = env.do(t, http.MethodPost, "/api/v1/product", input, env.adminToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "price is required")

	status, _ = env.do(t, http.MethodDelete, "/api/v1/product/"+id, nil, env.adminToken)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, "/api/v1/product/"+id, nil, env.adminToken)
	assert.Equal(t, http.StatusNotFound, status)
}

func multipartProduct(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="photo"; filename="photo.png"`)
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestCreateProductMultipartWithPhoto(t *testing.T) {
	env := setupApp(t)
	fields := map[string]string{
		"name": "Photo Shirt", "description": "with picture", "price": "12.5",
		"category": env.shirts.ID, "quantity": "4", "shipping": "true",
	}
	photo := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")

	buf, contentType := multipartProduct(t, fields, photo)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/product", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	status, body := env.send(t, req)
	require.Equal(t, http.StatusCreated, status, body)
	created := body["product"].(map[string]interface{})
	assert.Equal(t, 12.5, created["price"])
	assert.Equal(t, true, created["shipping"])
	id := created["id"].(string)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/product-photo/"+id, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, photo, raw)

	// Listings never carry the payload.
	status, body = env.do(t, http.MethodGet, "/api/v1/search/photo", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Photo Shirt"}, productNames(t, body, "products"))

	// Oversized photo
	buf, contentType = multipartProduct(t, fields, make([]byte, services.MaxPhotoBytes+1))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/product", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	status, _ = env.send(t, req)
	assert.Equal(t, http.StatusBadRequest, status)

	// A product without a photo has nothing to serve.
	mug := env.products["mug"]
	status, _ = env.do(t, http.MethodGet, "/api/v1/product-photo/"+mug.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	// Raw upload replaces the payload.
	req = httptest.NewRequest(http.MethodPut, "/api/v1/product-photo/"+mug.ID, bytes.NewReader([]byte("GIF89a-mug")))
	req.Header.Set("Content-Type", "image/gif")
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	status, _ = env.send(t, req)
	assert.Equal(t, http.StatusOK, status)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/product-photo/"+mug.ID, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
}

func TestCatalogQueries(t *testing.T) {
	env := setupApp(t)

	status, body := env.do(t, http.MethodGet, "/api/v1/product-count", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(4), body["total"])

	status, body = env.do(t, http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, productNames(t, body, "products"), 4)

	status, body = env.do(t, http.MethodGet, "/api/v1/product-list/1?perPage=3", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, productNames(t, body, "products"), 3)

	status, body = env.do(t, http.MethodGet, "/api/v1/product-list/2?perPage=3", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, productNames(t, body, "products"), 1)

	status, _ = env.do(t, http.MethodGet, "/api/v1/product-list/0", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/search/SHIRT", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{"Red Shirt", "Polo"}, productNames(t, body, "products"))

	status, body = env.do(t, http.MethodGet, "/api/v1/search/light%20and", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Linen Tee"}, productNames(t, body, "products"))

	status, body = env.do(t, http.MethodPost, "/api/v1/product-filters", map[string]interface{}{
		"categories": []string{env.shirts.ID},
		"priceRange": []interface{}{"10", 20},
	}, "")
	require.Equal(t, http.StatusOK, status, body)
	assert.ElementsMatch(t, []string{"Red Shirt", "Polo"}, productNames(t, body, "products"))

	status, body = env.do(t, http.MethodPost, "/api/v1/product-filters", map[string]interface{}{}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, productNames(t, body, "products"), 4)

	status, _ = env.do(t, http.MethodPost, "/api/v1/product-filters", map[string]interface{}{
		"priceRange": []interface{}{30, 10},
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/product-filters", map[string]interface{}{
		"priceRange": []interface{}{"cheap", 10},
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, "/api/v1/product-filters", map[string]interface{}{
		"priceRange": []interface{}{nil, nil},
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, _ = env.do(t, http.MethodPost, "/api/v1/product-filters", map[string]interface{}{
		"priceRange": []interface{}{0, nil},
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/product-list/1?perPage=1000", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/product-list/9223372036854775807?perPage=8", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	red := env.products["red-shirt"]
	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/related-product/%s/%s", red.ID, env.shirts.ID), nil, "")
	require.Equal(t, http.StatusOK, status)
	related := productNames(t, body, "products")
	assert.Len(t, related, 2)
	assert.NotContains(t, related, "Red Shirt")

	status, body = env.do(t, http.MethodGet, "/api/v1/product-category/mugs", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Mugs", body["category"].(map[string]interface{})["name"])
	assert.Equal(t, []string{"Mug"}, productNames(t, body, "products"))

	status, _ = env.do(t, http.MethodGet, "/api/v1/product-category/hats", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["category"], 2)

	status, _ = env.do(t, http.MethodGet, "/api/v1/product/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPreferencesAndRecommendations(t *testing.T) {
	env := setupApp(t)
	userID := registerUser(t, env, "fan@example.com")

	var body map[string]interface{}
	var status int
	for _, kw := range []string{"a", "b", "c", "d", "e", "ceramic", "mug"} {
		status, body = env.do(t, http.MethodPost, "/api/v1/preferences/"+userID, map[string]string{"keyword": kw}, "")
		require.Equal(t, http.StatusOK, status, body)
	}
	assert.Equal(t, []interface{}{"b", "c", "d", "e", "ceramic", "mug"}, body["preferences"])

	status, body = env.do(t, http.MethodGet, "/api/v1/preferences/"+userID, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["preferences"], 6)

	status, body = env.do(t, http.MethodGet, "/api/v1/recommendations/"+userID, nil, "")
	require.Equal(t, http.StatusOK, status)
	ranked := productNames(t, body, "recommendations")
	require.Len(t, ranked, 4)
	assert.Equal(t, "Mug", ranked[0])

	status, _ = env.do(t, http.MethodPost, "/api/v1/preferences/"+userID, map[string]string{"keyword": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/preferences/ghost", map[string]string{"keyword": "mug"}, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/recommendations/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}
