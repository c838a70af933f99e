package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wanderlust/internal/config"
	listingHandler "wanderlust/internal/domains/listing/handler"
	listingRepo "wanderlust/internal/domains/listing/repository"
	listingService "wanderlust/internal/domains/listing/service"
	reviewHandler "wanderlust/internal/domains/review/handler"
	reviewRepo "wanderlust/internal/domains/review/repository"
	reviewService "wanderlust/internal/domains/review/service"
	"wanderlust/internal/domains/user"
	userHandler "wanderlust/internal/domains/user/handler"
	userRepo "wanderlust/internal/domains/user/repository"
	userService "wanderlust/internal/domains/user/service"
	infraCache "wanderlust/internal/infrastructure/cache"
	"wanderlust/internal/infrastructure/database"
	"wanderlust/internal/infrastructure/geocoding"
	"wanderlust/internal/infrastructure/queue"
	"wanderlust/internal/infrastructure/session"
	"wanderlust/internal/infrastructure/storage"
	"wanderlust/internal/shared/middleware"
	"wanderlust/internal/web"
	"wanderlust/pkg/cache"
	"wanderlust/pkg/jwt"
)

const (
	cachePrefix = "wanderlust:"
	imagePrefix = "listings"
)

// Container holds every long-lived dependency of the api, the worker and the
// maintenance commands.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *redis.Client
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Sessions    session.Store
	Storage     *storage.MinIOStorage
	Images      *storage.ImageStore
	Geocoder    *geocoding.CachedGeocoder
	AsynqClient *asynq.Client

	// Web
	Renderer        *web.Renderer
	MetricsRegistry *prometheus.Registry
	HTTPMetrics     *middleware.HTTPMetrics

	// Repositories
	UserRepo    user.Repository
	ListingRepo listingRepo.RepositoryInterface
	ReviewRepo  reviewRepo.RepositoryInterface

	// Services
	UserService      user.Service
	ListingService   listingService.ServiceInterface
	ReviewService    reviewService.ServiceInterface
	GeoRepairer      *listingService.GeoRepairer
	CategoryAssigner *listingService.CategoryAssigner
	SheetImporter    *listingService.SheetImporter

	// Handlers
	UserHandler    *userHandler.UserHandler
	ListingHandler *listingHandler.ListingHandler
	ReviewHandler  *reviewHandler.ReviewHandler
}

// NewContainer loads the configuration and builds the dependency graph,
// infrastructure first. Any failure aborts startup.
func NewContainer() (*Container, error) {
	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIG
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// ========================================
	// STEP 2: INITIALIZE INFRASTRUCTURE
	// ========================================
	if err := c.initDatabase(); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initCache(); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initStorage(); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.JWTManager = jwt.NewManager(cfg.Session.Secret, cfg.App.Name)
	c.Sessions = session.NewCacheStore(c.Cache, cfg.Session.TTL, cfg.Session.TouchAfter)
	c.Geocoder = geocoding.NewCachedGeocoder(
		geocoding.NewNominatimClient(cfg.Geocoder),
		c.Cache,
		cfg.Geocoder.CacheTTL,
	)
	c.AsynqClient = queue.NewClient(cfg.Redis)

	c.Renderer, err = web.NewRenderer()
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	c.MetricsRegistry = prometheus.NewRegistry()
	c.MetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.HTTPMetrics = middleware.NewHTTPMetrics(c.MetricsRegistry)

	// ========================================
	// STEP 3: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Msg("DI container initialized")
	return c, nil
}

func (c *Container) initDatabase() error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// initCache connects Redis. Outside production an unreachable Redis falls
// back to an in-process cache so the app still boots.
func (c *Container) initCache() error {
	client := infraCache.NewRedisClient(c.Config.Redis)
	redisCache := infraCache.NewRedisCache(client, cachePrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisCache.Connect(ctx); err != nil {
		_ = client.Close()
		if c.Config.App.IsProduction() {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		c.Cache = cache.NewMemoryCache()
		return nil
	}

	c.Redis = client
	c.Cache = redisCache
	return nil
}

func (c *Container) initStorage() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	minioStorage, err := storage.NewMinIOStorage(ctx, c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init minio: %w", err)
	}

	c.Storage = minioStorage
	c.Images = storage.NewImageStore(
		minioStorage,
		storage.NewImageProcessor(c.Config.Upload.MaxImageBytes),
		imagePrefix,
		c.Config.Upload.Timeout,
	)
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.ListingRepo = listingRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo)

	c.ListingService = listingService.NewListingService(
		c.ListingRepo,
		c.Images,
		c.Geocoder,
		c.AsynqClient,
		c.Config.Geocoder.Timeout,
	)

	// Listing refs are pulled through the listing repository so a review
	// never touches the listings table directly.
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.ListingRepo, c.AsynqClient)

	// Batch repairs must respect the provider's usage policy.
	throttled := geocoding.NewThrottledGeocoder(c.Geocoder.Refresher(), c.Config.Queue.GeoThrottle)
	c.GeoRepairer = listingService.NewGeoRepairer(c.ListingRepo, throttled)
	c.CategoryAssigner = listingService.NewCategoryAssigner(c.ListingRepo)
	c.SheetImporter = listingService.NewSheetImporter(c.ListingRepo)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.ListingHandler = listingHandler.NewListingHandler(c.ListingService, c.Config.Upload.MaxImageBytes)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
}

// Cleanup releases every connection the container opened. Safe on a
// partially built container.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("Container cleanup completed")
}
