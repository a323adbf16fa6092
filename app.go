package main

import (
	"fmt"
	"time"

	"quickbuy/internal/config"
	"quickbuy/internal/events"
	"quickbuy/internal/handlers"
	"quickbuy/internal/middleware"
	"quickbuy/internal/models"
	"quickbuy/internal/repositories"
	"quickbuy/internal/services"
	"quickbuy/pkg/rabbitmq"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stores bundles the repositories backing one storage driver.
type stores struct {
	db         *gorm.DB
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	users      repositories.UserRepository
}

// openStores connects the driver named by cfg and migrates the schema.
func openStores(cfg *config.Config) (*stores, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "memory":
		categories := repositories.NewMockCategoryRepository()
		return &stores{
			products:   repositories.NewMockProductRepository(categories),
			categories: categories,
			users:      repositories.NewMockUserRepository(),
		}, nil
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &stores{
		db:         db,
		products:   repositories.NewGORMProductRepository(db),
		categories: repositories.NewGORMCategoryRepository(db),
		users:      repositories.NewGORMUserRepository(db),
	}, nil
}

// application is the wired HTTP server and the resources it owns.
type application struct {
	fiber  *fiber.App
	stores *stores
	mq     *rabbitmq.Client
	auth   *services.AuthService
}

// newApp wires repositories, services and handlers for cfg.
// Events are disabled when RABBITMQ_URL is empty or the broker is unreachable.
func newApp(cfg *config.Config) (*application, error) {
	st, err := openStores(cfg)
	if err != nil {
		return nil, err
	}

	a := &application{stores: st}

	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			zap.S().Warnf("Catalog events disabled: %v", err)
		} else {
			a.mq = client
			publisher = client
		}
	}

	// --- Services ---
	photoService := services.NewPhotoService(st.products)
	productService := services.NewProductService(st.products, st.categories, photoService, publisher)
	categoryService := services.NewCategoryService(st.categories)
	preferenceService := services.NewPreferenceService(st.users, publisher)
	recommendationService := services.NewRecommendationService(st.users, st.products)
	a.auth = services.NewAuthService(st.users, cfg.JWTSecret)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := a.auth.EnsureAdmin("Administrator", cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}
	if cfg.SeedData {
		if err := seedCatalog(categoryService, productService); err != nil {
			return nil, err
		}
	}

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:     "QuickBuy",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.Metrics())

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(a.auth).RegisterRoutes(apiV1)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, photoService).
		RegisterRoutes(apiV1, middleware.AuthRequired(a.auth), middleware.AdminRequired())
	handlers.NewPreferenceHandler(preferenceService, recommendationService).RegisterRoutes(apiV1)

	a.fiber = app
	return a, nil
}

func (a *application) handleHealth(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"events": "disabled",
	}
	if a.mq != nil {
		status["events"] = a.mq.BreakerState()
	}
	if a.stores.db != nil {
		sqlDB, err := a.stores.db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		status["database"] = "ok"
	}
	return c.JSON(status)
}

// startConsumer logs every catalog event delivered to the event queue.
func (a *application) startConsumer() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.ConsumeEvents(logCatalogEvent)
}

// logCatalogEvent decodes one delivery and logs it. Undecodable bodies are rejected.
func logCatalogEvent(msg amqp.Delivery) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		return fmt.Errorf("malformed %s event: %w", msg.RoutingKey, err)
	}
	zap.S().Infow("Catalog event", "routing_key", msg.RoutingKey, "payload", payload)
	return nil
}

// Close releases the broker connection and the database pool.
func (a *application) Close() error {
	var errs []error
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.stores.db != nil {
		if sqlDB, err := a.stores.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
