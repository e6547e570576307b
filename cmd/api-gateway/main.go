package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/icetimehq/icetime-api/api/swagger"
	"github.com/icetimehq/icetime-api/internal/extract"
	"github.com/icetimehq/icetime-api/internal/handler"
	"github.com/icetimehq/icetime-api/internal/middleware"
	"github.com/icetimehq/icetime-api/internal/models"
	"github.com/icetimehq/icetime-api/internal/repository"
	"github.com/icetimehq/icetime-api/internal/scheduler"
	"github.com/icetimehq/icetime-api/internal/service"
	"github.com/icetimehq/icetime-api/internal/source"
	"github.com/icetimehq/icetime-api/pkg/cache"
	"github.com/icetimehq/icetime-api/pkg/config"
	"github.com/icetimehq/icetime-api/pkg/database"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
	"github.com/icetimehq/icetime-api/pkg/export"
	"github.com/icetimehq/icetime-api/pkg/jobs"
	"github.com/icetimehq/icetime-api/pkg/logger"
	corsmiddleware "github.com/icetimehq/icetime-api/pkg/middleware/cors"
	reqidmiddleware "github.com/icetimehq/icetime-api/pkg/middleware/requestid"
	"github.com/icetimehq/icetime-api/pkg/response"
)

// @title IceTime API
// @version 0.1.0
// @description Aggregated ice rink schedules
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	// Repositories and cross-cutting services.
	rinkRepo := repository.NewRinkRepository(db)
	iceTimeRepo := repository.NewIceTimeRepository(db)

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.ListTTL, logr, cfg.Cache.Enabled)
	reconcile := service.NewReconcileService(iceTimeRepo, cacheSvc, metrics, logr)

	// Shared outbound clients. The extraction client paces every request,
	// no matter which adapter issues it.
	httpClient := resty.New().SetTimeout(30 * time.Second)
	extractor := extract.NewClient(cfg.Extraction, logr)

	adapters := []source.Adapter{
		source.NewUnionSportsArenaAdapter(httpClient, rinkRepo, reconcile, "", cfg.Ingest.DefaultWindowDays, logr),
		source.NewCodeyArenaAdapter(httpClient, rinkRepo, reconcile, "", cfg.Ingest.ExtendedWindowDays, logr),
		source.NewBridgewaterAdapter(cfg.Browser, rinkRepo, reconcile, "", logr),
		source.NewMennenAdapter("mennen-sports-arena", "Public Skate", models.TypeOpenSkate, ".entry-content",
			httpClient, extractor, rinkRepo, reconcile, "", logr),
		source.NewWebtracAdapter(httpClient, extractor, rinkRepo, reconcile, "", logr),
	}

	jobSvc := service.NewJobService(adapters, metrics, logr)
	iceTimeSvc := service.NewIceTimeService(iceTimeRepo, cacheSvc, nil, logr)
	rinkSvc := service.NewRinkService(rinkRepo, cacheSvc, logr)
	exportSvc := service.NewExportService(iceTimeSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	// Background queue for async job triggers.
	queue := jobs.NewQueue("ingestion", func(ctx context.Context, job jobs.Job) error {
		report, err := jobSvc.Run(ctx, job.Type)
		if err != nil {
			return err
		}
		if !report.Success {
			return fmt.Errorf("job %s failed: %s", job.Type, report.Error)
		}
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.Background())
	defer queue.Stop()

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(jobSvc, cfg.Scheduler.Entries, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to build scheduler", "error", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Handlers and routes.
	iceTimeHandler := handler.NewIceTimeHandler(iceTimeSvc, exportSvc)
	rinkHandler := handler.NewRinkHandler(rinkSvc)
	cronHandler := handler.NewCronHandler(jobSvc, queue)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/ice-times", iceTimeHandler.List)
		api.GET("/ice-times/export", iceTimeHandler.Export)
		api.GET("/rinks", rinkHandler.List)
		api.GET("/cron", cronHandler.List)
		api.POST("/cron/:jobName", cronHandler.Run)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrNotFound)
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down", zap.Duration("grace", 10*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
