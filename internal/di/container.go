package di

import (
	"time"

	"github.com/prohmpiriya/explore-events/internal/handler"
	"github.com/prohmpiriya/explore-events/internal/repository"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/prohmpiriya/explore-events/internal/stats"
	"github.com/prohmpiriya/explore-events/pkg/database"
	"github.com/prohmpiriya/explore-events/pkg/redis"
)

// Container holds all dependencies of the events service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo    repository.EventRepository
	RequestRepo  repository.RequestRepository
	RatingRepo   repository.RatingRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	Transactor   repository.Transactor

	// Services
	EventService      service.EventService
	EventQueryService service.EventQueryService
	RequestService    service.RequestService
	RatingService     service.RatingService

	// Handlers
	HealthHandler  *handler.HealthHandler
	EventHandler   *handler.EventHandler
	AdminHandler   *handler.AdminHandler
	PublicHandler  *handler.PublicHandler
	RequestHandler *handler.RequestHandler
	RatingHandler  *handler.RatingHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB *database.PostgresDB
	// Redis is optional; when set category lookups are cached
	Redis         *redis.Client
	CategoryTTL   time.Duration
	Stats         stats.Gateway
	ServiceConfig *service.Config
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.RequestRepo = repository.NewPostgresRequestRepository(pool)
	c.RatingRepo = repository.NewPostgresRatingRepository(pool)
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.Transactor = repository.NewPostgresTransactor(pool)

	var categoryRepo repository.CategoryRepository = repository.NewPostgresCategoryRepository(pool)
	if c.Redis != nil {
		categoryRepo = repository.NewCachedCategoryRepository(categoryRepo, c.Redis, cfg.CategoryTTL)
	}
	c.CategoryRepo = categoryRepo

	// Initialize services
	c.EventService = service.NewEventService(
		c.EventRepo,
		c.CategoryRepo,
		c.UserRepo,
		c.RatingRepo,
		cfg.Stats.ViewCounter,
		cfg.ServiceConfig,
	)
	c.EventQueryService = service.NewEventQueryService(
		c.EventRepo,
		c.UserRepo,
		c.RatingRepo,
		cfg.Stats,
		cfg.ServiceConfig,
	)
	c.RequestService = service.NewRequestService(
		c.RequestRepo,
		c.EventRepo,
		c.UserRepo,
		c.Transactor,
		cfg.ServiceConfig,
	)
	c.RatingService = service.NewRatingService(
		c.RatingRepo,
		c.EventRepo,
		c.RequestRepo,
		c.UserRepo,
	)

	// Initialize handlers
	components := map[string]handler.HealthChecker{"database": c.DB, "redis": nil}
	if c.Redis != nil {
		components["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(components)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.EventQueryService)
	c.AdminHandler = handler.NewAdminHandler(c.EventService, c.EventQueryService)
	c.PublicHandler = handler.NewPublicHandler(c.EventQueryService)
	c.RequestHandler = handler.NewRequestHandler(c.RequestService)
	c.RatingHandler = handler.NewRatingHandler(c.RatingService)

	return c
}
