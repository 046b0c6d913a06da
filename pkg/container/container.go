package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/queue"
	"library-backend/internal/infrastructure/realtime"
	"library-backend/internal/infrastructure/storage"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"

	activityHandler "library-backend/internal/domains/activity/handler"
	activityJob "library-backend/internal/domains/activity/job"
	activityRepo "library-backend/internal/domains/activity/repository"
	activityService "library-backend/internal/domains/activity/service"
	authHandler "library-backend/internal/domains/auth/handler"
	authService "library-backend/internal/domains/auth/service"
	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	dashboardHandler "library-backend/internal/domains/dashboard/handler"
	dashboardService "library-backend/internal/domains/dashboard/service"
	lendingHandler "library-backend/internal/domains/lending/handler"
	lendingJob "library-backend/internal/domains/lending/job"
	lendingModel "library-backend/internal/domains/lending/model"
	lendingRepo "library-backend/internal/domains/lending/repository"
	lendingService "library-backend/internal/domains/lending/service"
	memberHandler "library-backend/internal/domains/member/handler"
	memberRepo "library-backend/internal/domains/member/repository"
	memberService "library-backend/internal/domains/member/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by the API, the
// worker and the importer.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	Hub         *realtime.Hub
	Storage     *storage.MinIOStorage // nil when MinIO is disabled

	// Repositories
	BookRepo     bookRepo.RepositoryInterface
	MemberRepo   memberRepo.RepositoryInterface
	LendingRepo  lendingRepo.RepositoryInterface
	ActivityRepo activityRepo.RepositoryInterface

	// Services
	Recorder         activityService.Recorder
	BookService      bookService.ServiceInterface
	MemberService    memberService.ServiceInterface
	LendingService   lendingService.ServiceInterface
	DashboardService dashboardService.ServiceInterface
	AuthService      authService.ServiceInterface

	// Handlers
	BookHandler      *bookHandler.Handler
	MemberHandler    *memberHandler.Handler
	LendingHandler   *lendingHandler.Handler
	ActivityHandler  *activityHandler.Handler
	DashboardHandler *dashboardHandler.Handler
	AuthHandler      *authHandler.Handler

	// Job handlers (worker)
	RecordActivityJob *activityJob.RecordHandler
	OverdueScanJob    *lendingJob.OverdueScanHandler
}

// Options tunes which optional pieces a process needs.
type Options struct {
	// Realtime creates the websocket hub. Only the API serves it.
	Realtime bool
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph in order:
// config, infrastructure, repositories, services, handlers.
func NewContainer(ctx context.Context, opts Options) (*Container, error) {
	log.Info().Msg("Initializing DI container")

	c := &Container{}

	// ----------------------------------------
	// STEP 1: CONFIGURATION
	// ----------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("Config loaded")

	// ----------------------------------------
	// STEP 2: DATABASE
	// ----------------------------------------
	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}

	// ----------------------------------------
	// STEP 3: CACHE, QUEUE, REALTIME, STORAGE
	// ----------------------------------------
	c.initCache(ctx)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	c.AsynqClient = queue.NewClient(cfg.Redis)

	if opts.Realtime {
		c.Hub = realtime.NewHub(cfg.App.CORSOrigins...)
	}

	if cfg.MinIO.Enabled {
		minioStorage, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			// Covers are optional; the rest of the API keeps working.
			log.Warn().Err(err).Msg("MinIO unavailable, cover uploads disabled")
		} else {
			c.Storage = minioStorage
			log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("MinIO connected")
		}
	}

	// ----------------------------------------
	// STEP 4-6: REPOSITORIES, SERVICES, HANDLERS
	// ----------------------------------------
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("DI container initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initDatabase(ctx context.Context) error {
	dbConfig, err := c.Config.Database.PoolConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(connectCtx); err != nil {
		db.Close()
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := db.Migrate(connectCtx); err != nil {
		db.Close()
		return fmt.Errorf("database migration failed: %w", err)
	}

	c.DB = db
	log.Info().Msg("Database connected")
	return nil
}

// initCache uses Redis when reachable and falls back to an in-process cache.
func (c *Container) initCache(ctx context.Context) {
	cfg := c.Config.Redis
	redisCache := infraCache.NewRedisCache(cfg.Host, cfg.Password, cfg.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := redisCache.Connect(pingCtx); err != nil {
		log.Warn().Err(err).Msg("Redis connection failed (non-critical), using in-memory cache")
		_ = redisCache.Close()
		c.Cache = cache.NewMemoryCache()
		return
	}

	c.Cache = redisCache
	log.Info().Msg("Redis connected")
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.MemberRepo = memberRepo.NewPostgresRepository(pool)
	c.LendingRepo = lendingRepo.NewPostgresRepository(pool)
	c.ActivityRepo = activityRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config

	recorderOpts := activityService.RecorderOptions{
		Mode:     cfg.Activity.Mode,
		Timeout:  cfg.Activity.WriteTimeout,
		Enqueuer: c.AsynqClient,
		Cache:    c.Cache,
	}
	if c.Hub != nil {
		recorderOpts.Publisher = c.Hub
	}
	c.Recorder = activityService.NewRecorder(c.ActivityRepo, recorderOpts)

	bookOpts := bookService.Options{Cache: c.Cache}
	if c.Storage != nil {
		bookOpts.Storage = c.Storage
		bookOpts.Processor = storage.NewImageProcessor()
	}
	c.BookService = bookService.NewBookService(c.BookRepo, c.Recorder, bookOpts)

	c.MemberService = memberService.NewMemberService(c.MemberRepo, c.Recorder, c.Cache)

	c.LendingService = lendingService.NewLendingService(
		c.LendingRepo,
		c.Recorder,
		c.Cache,
		lendingModel.Policy{
			LoanPeriodDays: cfg.Lending.LoanPeriodDays,
			FinePerDay:     cfg.Lending.FinePerDay,
		},
	)

	c.DashboardService = dashboardService.NewDashboardService(
		dashboardService.Dependencies{
			Books:    c.BookRepo,
			Members:  c.MemberRepo,
			Loans:    c.LendingRepo,
			Activity: c.ActivityRepo,
			Cache:    c.Cache,
		},
		cfg.Activity.CacheTTL,
		cfg.Activity.RecentLimit,
	)

	c.AuthService = authService.NewAuthService(cfg.Auth, c.JWTManager, c.Cache)

	c.RecordActivityJob = activityJob.NewRecordHandler(c.ActivityRepo, c.Cache)
	c.OverdueScanJob = lendingJob.NewOverdueScanHandler(c.LendingService, c.Cache, 2*time.Hour)
}

func (c *Container) initHandlers() {
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.MemberHandler = memberHandler.NewHandler(c.MemberService)
	c.LendingHandler = lendingHandler.NewHandler(c.LendingService)
	c.DashboardHandler = dashboardHandler.NewHandler(c.DashboardService)
	c.AuthHandler = authHandler.NewHandler(c.AuthService)
	if c.Hub != nil {
		c.ActivityHandler = activityHandler.NewHandler(c.Hub)
	}
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases connections. Call once on shutdown.
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}

	log.Info().Msg("Container cleanup completed")
}
