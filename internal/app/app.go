package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trading_edu_backend/internal/catalog"
	"trading_edu_backend/internal/config"
	"trading_edu_backend/internal/controller"
	"trading_edu_backend/internal/middleware"
	"trading_edu_backend/internal/repository"
	"trading_edu_backend/internal/service"
	"trading_edu_backend/pkg/configwatcher"
	"trading_edu_backend/pkg/database"
	"trading_edu_backend/pkg/logger"
	"trading_edu_backend/pkg/monitoring"
	"trading_edu_backend/pkg/security"
	"trading_edu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	stopWatch       context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	store   repository.ProgressStore
	catalog *repository.CatalogRepository
}

type services struct {
	redisNotifier *service.RedisNotifier
	storage       *service.StorageService
	progress      *service.ProgressService
	quiz          *service.QuizService
}

type controllers struct {
	education *controller.EducationController
	quiz      *controller.QuizController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{}
	if db != nil {
		repos.catalog = repository.NewCatalogRepository(db)
	}

	switch cfg.Progress.Backend {
	case config.ProgressBackendDatabase:
		repos.store = repository.NewGormProgressStore(db)
	case config.ProgressBackendRedis:
		repos.store = repository.NewRedisProgressStore(rdb)
	default:
		logger.Log.Warn("学习进度仅保存在内存中，重启后丢失")
		repos.store = repository.NewMemoryProgressStore()
	}
	return repos
}

// loadCatalog returns the catalog named by catalog.source. An empty or
// unreadable database catalog falls back to the bundled one.
func (a *App) loadCatalog(repos *repositories, cfg *config.Config) *catalog.Catalog {
	if cfg.Catalog.Source == config.CatalogSourceDatabase && repos.catalog != nil {
		cat, err := catalogFromDatabase(repos.catalog)
		if err == nil && cat != nil {
			logger.Log.Info("已从数据库加载课程目录", zap.Int("modules", cat.TotalModules()))
			return cat
		}
		if err != nil {
			logger.Log.Warn("从数据库加载课程目录失败，使用内置目录", zap.Error(err))
		} else {
			logger.Log.Warn("数据库中没有课程，使用内置目录")
		}
	}

	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.Catalog.File != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.File)
	} else {
		cat, err = catalog.Bundled()
	}
	if err != nil {
		logger.Log.Fatal("Failed to load catalog", zap.String("file", cfg.Catalog.File), zap.Error(err))
	}
	return cat
}

func catalogFromDatabase(repo *repository.CatalogRepository) (*catalog.Catalog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	modules, err := repo.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, nil
	}
	badges, err := repo.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(modules, badges)
}

func (a *App) initServices(repos *repositories, cat *catalog.Catalog, cfg *config.Config, rdb *redis.Client) *services {
	notifiers := service.Notifiers{service.ZapNotifier{}, service.ContextNotifier{}}
	var redisNotifier *service.RedisNotifier
	if rdb != nil {
		redisNotifier = service.NewRedisNotifier(rdb, 0)
		notifiers = append(notifiers, redisNotifier)
	}

	storageService := service.NewStorageService(cfg)
	progressService := service.NewProgressService(repos.store, cat, notifiers, storageService, cfg.Education.ModulesPerLevel)

	// 远程题库仅在数据库可用时启用
	var questions service.QuestionSource
	if repos.catalog != nil {
		questions = repos.catalog
	}

	return &services{
		redisNotifier: redisNotifier,
		storage:       storageService,
		progress:      progressService,
		quiz:          service.NewQuizService(cat, questions, progressService),
	}
}

func (a *App) initControllers(s *services, repos *repositories) *controllers {
	return &controllers{
		education: controller.NewEducationController(s.progress, s.quiz),
		quiz:      controller.NewQuizController(s.quiz),
		health:    controller.NewHealthController(a.DB, a.Redis, repos.store),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute, middleware.ByUser))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func needsDatabase(cfg *config.Config) bool {
	return cfg.Progress.Backend == config.ProgressBackendDatabase ||
		cfg.Catalog.Source == config.CatalogSourceDatabase ||
		cfg.MigrateOnly
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	if needsDatabase(cfg) {
		migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
		db, err := database.InitDB(&cfg.Database, migrate)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
			log.Fatalf("Failed to initialize database: %v", err)
		}
		app.DB = db
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			log.Fatalf("Failed to initialize redis: %v", err)
		}
		app.Redis = rdb
	}

	repos := app.initRepositories(app.DB, app.Redis, cfg)
	cat := app.loadCatalog(repos, cfg)
	app.services = app.initServices(repos, cat, cfg, app.Redis)
	controllers := app.initControllers(app.services, repos)

	app.RegisterConfigCallback(logger.SetLevel)
	app.RegisterConfigCallback(func(c *config.Config) {
		app.services.progress.SetModulesPerLevel(c.Education.ModulesPerLevel)
	})

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// WatchConfig re-applies configFile to the registered callbacks whenever it
// changes on disk. It returns immediately; the watcher stops on shutdown.
func (a *App) WatchConfig(configFile string) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel
	go func() {
		err := configwatcher.WatchConfig(ctx, configFile, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopWatch != nil {
		a.stopWatch()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	// 先把队列中的通知发完再关闭 Redis
	if a.services != nil && a.services.redisNotifier != nil {
		a.services.redisNotifier.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
