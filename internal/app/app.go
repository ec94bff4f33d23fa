package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gradebook_backend/internal/config"
	"gradebook_backend/internal/controller"
	"gradebook_backend/internal/feed"
	"gradebook_backend/internal/repository"
	"gradebook_backend/internal/service"
	"gradebook_backend/internal/timetable"
	"gradebook_backend/pkg/configwatcher"
	"gradebook_backend/pkg/database"
	"gradebook_backend/pkg/logger"
	"gradebook_backend/pkg/monitoring"
	"gradebook_backend/pkg/security"
	"gradebook_backend/pkg/tracing"

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
	configCallbacks []func(*config.Config)
	tracer          *sdktrace.TracerProvider
}

type services struct {
	grade     *service.GradeService
	timetable *service.TimetableService
}

type controllers struct {
	grade     *controller.GradeController
	timetable *controller.TimetableController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) needsRedis() bool {
	return a.Config.Storage.Type == "redis" || a.Config.Feed.CacheTTL > 0
}

// initPersister 按 storage.type 选择课表快照的存放位置
func (a *App) initPersister() (timetable.Persister, error) {
	cfg := a.Config
	switch cfg.Storage.Type {
	case "redis":
		return repository.NewTimetableRedisRepository(a.Redis), nil
	case "database":
		return repository.NewTimetableRepository(a.DB), nil
	case "minio":
		repo, err := repository.NewTimetableObjectRepository(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case "local":
		return repository.NewTimetableFileRepository(&cfg.Storage), nil
	default:
		return repository.NewMemoryTimetableRepository(), nil
	}
}

func (a *App) initFeed() service.GradeFeed {
	client := feed.NewClient(&a.Config.Feed)
	if a.Redis == nil || a.Config.Feed.CacheTTL <= 0 {
		return client
	}
	return feed.NewCachedFeed(client, a.Redis, a.Config.Feed.CacheTTL)
}

func (a *App) initServices(gradeFeed service.GradeFeed, persister timetable.Persister) *services {
	return &services{
		grade:     service.NewGradeService(gradeFeed),
		timetable: service.NewTimetableService(persister, a.Config.Storage.KeyTemplate),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		grade:     controller.NewGradeController(s.grade),
		timetable: controller.NewTimetableController(s.timetable),
		health:    controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build 组装服务、控制器与路由，外部依赖已经就绪
func (a *App) build(gradeFeed service.GradeFeed, persister timetable.Persister) {
	monitoring.Init()

	a.services = a.initServices(gradeFeed, persister)
	c := a.initControllers(a.services)

	router := gin.New()
	router.Use(gin.Recovery())
	if a.Config.Server.Mode != gin.ReleaseMode {
		router.Use(gin.Logger())
	}
	a.Router = router

	a.setupMiddlewares(router, a.Config)
	a.registerRoutes(router, c, a.Config)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	gin.SetMode(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	if cfg.Storage.Type == "database" {
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
		app.DB = db
	}

	if app.needsRedis() {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	persister, err := app.initPersister()
	if err != nil {
		logger.Log.Fatal("Failed to initialize timetable storage",
			zap.String("type", cfg.Storage.Type), zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(&cfg.Tracing, cfg.Server.Mode)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.build(app.initFeed(), persister)

	// 热更新时同步日志级别
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})

	logger.Log.Info("Application initialized",
		zap.String("storage", cfg.Storage.Type),
		zap.Bool("feed_cache", app.Redis != nil && cfg.Feed.CacheTTL > 0))

	return app
}

func (a *App) startConfigWatcher(ctx context.Context) {
	if !a.Config.Server.WatchConfig || a.Config.ConfigPath == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.ConfigPath, func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startConfigWatcher(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
