package app

import (
	"coder_edu_progress/internal/cms"
	"coder_edu_progress/internal/config"
	"coder_edu_progress/internal/controller"
	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/repository"
	"coder_edu_progress/internal/service"
	"coder_edu_progress/pkg/database"
	"coder_edu_progress/pkg/logger"
	"coder_edu_progress/pkg/monitoring"
	"coder_edu_progress/pkg/security"
	"coder_edu_progress/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services
	tracer   *sdktrace.TracerProvider
	ctx      context.Context
	cancel   context.CancelFunc

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
}

type services struct {
	storage     *service.StorageService
	cache       service.CourseCache
	courses     *service.CourseService
	enrollments *service.EnrollmentService
	progression *service.ProgressionService
}

type controllers struct {
	course      *controller.CourseController
	enrollment  *controller.EnrollmentController
	progression *controller.ProgressionController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，依次调用已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append(([]func(*config.Config))(nil), a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)

	s.cache = service.NopCourseCache{}
	if rdb != nil && cfg.Cache.Enabled {
		rc := service.NewRedisCourseCache(rdb, cfg.Cache.TTL())
		a.RegisterConfigCallback(func(c *config.Config) {
			rc.SetTTL(c.Cache.TTL())
		})
		s.cache = rc
	}

	s.courses = service.NewCourseService(repos.course, s.storage, s.cache)
	s.enrollments = service.NewEnrollmentService(s.courses, repos.enrollment)
	s.progression = service.NewProgressionService(s.courses, repos.enrollment)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		course:      controller.NewCourseController(s.courses),
		enrollment:  controller.NewEnrollmentController(s.enrollments),
		progression: controller.NewProgressionController(s.progression),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 组装服务与路由，不负责建立连接；rdb 为 nil 时不使用课程缓存
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		ctx:    ctx,
		cancel: cancel,
	}

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
		logger.Log.Info("Log level updated", zap.Stringer("level", logger.Level()))
	})

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	return app
}

// NewApp 初始化日志、数据库、Redis 与链路追踪，失败时直接退出
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled {
		rdb, err = database.InitRedis(context.Background(), &cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, course cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	return app
}

// ImportFile 导入课程文档，.json 按 JSON 解析，其余按 YAML
func (a *App) ImportFile(ctx context.Context, path string) (*model.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc cms.Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err = cms.DecodeJSON(data)
	} else {
		doc, err = cms.DecodeYAML(data)
	}
	if err != nil {
		return nil, err
	}
	return a.services.courses.Import(ctx, doc)
}

// Run 阻塞直到 ctx 结束或服务异常退出，随后优雅关闭（5 秒超时）
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Log.Info("Server exiting")
	return nil
}

// Close 释放后台协程与外部连接
func (a *App) Close() {
	a.cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = logger.Log.Sync()
}
