package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"quickbuy/internal/config"

	"github.com/goccy/go-json"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(driver, dsn string) *config.Config {
	return &config.Config{
		AppPort:       ":0",
		DBDriver:      driver,
		DatabaseDSN:   dsn,
		JWTSecret:     "test_jwt_secret",
		SeedData:      true,
		AdminEmail:    "admin@quickbuy.test",
		AdminPassword: "admin-secret",
	}
}

func getJSON(t *testing.T, a *application, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := a.fiber.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestNewAppInMemory(t *testing.T) {
	a, err := newApp(testConfig("memory", ""))
	require.NoError(t, err)
	defer a.Close()

	status, body := getJSON(t, a, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["events"])

	status, body = getJSON(t, a, "/api/v1/product-count")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(len(seedProducts)), body["total"])

	status, body = getJSON(t, a, "/api/v1/categories")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["category"], 3)

	_, admin, err := a.auth.LoginUser("admin@quickbuy.test", "admin-secret")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.NoError(t, a.startConsumer())
}

func TestNewAppSQLiteSeedsOnce(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "quickbuy.db")

	first, err := newApp(testConfig("sqlite", dsn))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := newApp(testConfig("sqlite", dsn))
	require.NoError(t, err)
	defer second.Close()

	status, body := getJSON(t, second, "/api/v1/product-count")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(len(seedProducts)), body["total"])

	status, body = getJSON(t, second, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	a, err := newApp(testConfig("memory", ""))
	require.NoError(t, err)
	defer a.Close()

	getJSON(t, a, "/api/v1/products")

	resp, err := a.fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "quickbuy_http_requests_total")
	assert.Contains(t, string(raw), "quickbuy_catalog_queries_total")
}

func TestOpenStoresRejectsUnknownDriver(t *testing.T) {
	_, err := openStores(testConfig("mongodb", ""))
	assert.Error(t, err)
}

func TestLogCatalogEvent(t *testing.T) {
	assert.NoError(t, logCatalogEvent(amqp.Delivery{RoutingKey: "product.created", Body: []byte(`{"productId":"p-1"}`)}))
	assert.Error(t, logCatalogEvent(amqp.Delivery{RoutingKey: "product.created", Body: []byte("not json")}))
}
