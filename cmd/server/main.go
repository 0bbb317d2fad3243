package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eldesouky97/home-craft/internal/config"
	httpapi "github.com/Eldesouky97/home-craft/internal/controllers/http"
	"github.com/Eldesouky97/home-craft/internal/i18n"
	"github.com/Eldesouky97/home-craft/internal/infra/database"
	rabbit "github.com/Eldesouky97/home-craft/internal/infra/rabbitmq"
	"github.com/Eldesouky97/home-craft/internal/infra/storage"
	"github.com/Eldesouky97/home-craft/internal/infra/telemetry"
	"github.com/Eldesouky97/home-craft/internal/logger"
	"github.com/Eldesouky97/home-craft/internal/metrics"
	mysqlrepo "github.com/Eldesouky97/home-craft/internal/repository/mysql"
	"github.com/Eldesouky97/home-craft/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./config.yaml when present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.App.Name, cfg.App.Env, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.SampleRatio)
	if err != nil {
		return err
	}
	sentryEnabled, err := telemetry.InitSentry(cfg.Telemetry.SentryDSN, cfg.App.Env)
	if err != nil {
		log.Warn("sentry disabled", zap.Error(err))
	}

	dbLogLevel := gormlogger.Warn
	if !cfg.App.Production() {
		dbLogLevel = gormlogger.Info
	}
	db, err := database.Open(cfg.Database, dbLogLevel)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	log.Info("database connected", zap.String("driver", cfg.Database.Driver))

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	categoryRepo := mysqlrepo.NewCategoryRepository(db)
	storeRepo := mysqlrepo.NewStoreRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)
	uow := mysqlrepo.NewUnitOfWork(db)

	var publisher rabbit.PublisherInterface
	if cfg.RabbitMQ.URL == "" {
		log.Warn("rabbitmq url not set, order events are only logged")
		publisher = rabbit.NewLogPublisher(log)
	} else {
		p, err := rabbit.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	orderService := services.NewOrderService(uow, orderRepo, productRepo, publisher, services.OrderConfig{
		Currency:              cfg.Orders.Currency,
		TaxRate:               cfg.Orders.TaxRate,
		ShippingFee:           cfg.Orders.ShippingFee,
		FreeShippingThreshold: cfg.Orders.FreeShippingThreshold,
		OperationTimeout:      cfg.Database.AcquireTimeout,
		OrderCacheTTL:         cfg.Cache.OrderTTL,
		StatsCacheTTL:         cfg.Cache.StatsTTL,
	}, log)

	checks := map[string]httpapi.HealthCheck{
		"database": sqlDB.PingContext,
	}

	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: 20,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		orderService.SetRedisClient(redisClient)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	images, err := storage.NewLocal(cfg.Uploads.Dir, cfg.Uploads.MaxSize, cfg.Uploads.MaxAge, log)
	if err != nil {
		return err
	}
	sweeper, err := images.StartSweeper(cfg.Uploads.SweepSchedule, metrics.RecordUploadsSwept)
	if err != nil {
		return err
	}

	tr := i18n.New(cfg.App.Locale)
	resp := httpapi.NewResponder(tr, cfg.App.Production(), log)
	handler := httpapi.NewHandler(httpapi.Services{
		Orders:  orderService,
		Catalog: services.NewCatalogService(uow, productRepo, categoryRepo, storeRepo, log),
		Stores:  services.NewStoreService(storeRepo, log),
		Auth:    services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log),
		Uploads: services.NewUploadService(images, log),
		Stats:   services.NewStatsService(mysqlrepo.NewStatsRepository(db), log),
	}, resp, httpapi.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, resp))

	if cfg.App.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		ServiceName:    cfg.App.Name,
		Tracing:        cfg.Telemetry.OTLPEndpoint != "",
		Sentry:         sentryEnabled,
		ImagesDir:      images.ImagesDir(),
		MaxUploadBytes: cfg.Uploads.MaxSize,
		HealthChecks:   checks,
	}, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting home-craft api", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		<-sweeper.Stop().Done()
		orderService.Wait()
		if cerr := database.Close(db); cerr != nil {
			log.Warn("close database", zap.Error(cerr))
		}
		if sentryEnabled {
			telemetry.FlushSentry(2 * time.Second)
		}
		if terr := shutdownTracer(shutdownCtx); terr != nil {
			log.Warn("flush traces", zap.Error(terr))
		}
		return err
	})

	return g.Wait()
}
