package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-variation-service/config"
	"github.com/fekuna/omnipos-variation-service/internal/auth"
	"github.com/fekuna/omnipos-variation-service/internal/schema"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/fekuna/omnipos-variation-service/pkg/broker"
	"github.com/fekuna/omnipos-variation-service/pkg/cache"
	_ "github.com/fekuna/omnipos-variation-service/pkg/codec"
	"github.com/fekuna/omnipos-variation-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-variation-service/pkg/i18n"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/middleware"
	"github.com/fekuna/omnipos-variation-service/pkg/search"

	catH "github.com/fekuna/omnipos-variation-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-variation-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-variation-service/internal/category/usecase"

	invH "github.com/fekuna/omnipos-variation-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-variation-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-variation-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-variation-service/internal/inventory/usecase"

	prodH "github.com/fekuna/omnipos-variation-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-variation-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-variation-service/internal/product/usecase"

	varH "github.com/fekuna/omnipos-variation-service/internal/variation/handler"
	varRepoPkg "github.com/fekuna/omnipos-variation-service/internal/variation/repository"
	varUCPkg "github.com/fekuna/omnipos-variation-service/internal/variation/usecase"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 2.5 Initialize i18n
	if err := i18n.Init(cfg.Storefront.DefaultLocale); err != nil {
		appLogger.Fatal("Could not load locales", zap.Error(err))
	}
	if cfg.Storefront.LocalesDir != "" {
		n, err := i18n.LoadDir(cfg.Storefront.LocalesDir)
		if err != nil {
			appLogger.Warn("Failed to load extra locales", zap.String("dir", cfg.Storefront.LocalesDir), zap.Error(err))
		} else {
			appLogger.Info("Loaded extra locales", zap.Int("files", n))
		}
	}

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if err := schema.Apply(context.Background(), db); err != nil {
		appLogger.Fatal("Could not apply schema", zap.Error(err))
	}

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	varRepo := varRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis. The service keeps running without it; views are
	// then read from the database and reservations go unlocked.
	var (
		viewCache variation.Cache
		locker    invUCPkg.Locker
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis (storefront cache disabled)", zap.Error(err))
		} else {
			defer redisClient.Close()
			viewCache, locker = redisClient, redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 5.5 Initialize Kafka
	var (
		publisher     variation.Publisher
		kafkaConsumer *broker.KafkaConsumer
	)
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.VariationsTopic,
		})
		defer producer.Close()
		publisher = producer

		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrdersTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("orders_topic", cfg.Kafka.OrdersTopic),
			zap.String("variations_topic", cfg.Kafka.VariationsTopic),
		)
	}

	// 5.8 Initialize Elasticsearch
	var indexer variation.Indexer
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (summaries will not be indexed)", zap.Error(err))
		} else {
			indexer = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Initialize UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, viewCache, appLogger)
	varUC := varUCPkg.NewVariationUseCase(prodUC, varRepo, viewCache, publisher, indexer, varUCPkg.Config{
		PlaceholderImage: cfg.Storefront.PlaceholderImage,
		CacheTTL:         cfg.Storefront.CacheTTL,
	}, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, locker, varUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6.5 Start Listeners
	if kafkaConsumer != nil {
		invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)
		go invListener.Start(ctx)
	}

	// 7. Initialize Handlers
	catHandler := catH.NewCategoryHandler(catUC, appLogger)
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	varHTTP := varH.NewHTTPHandler(varUC, appLogger)
	varGRPC := varH.NewGRPCHandler(varUC, appLogger)
	invHandler := invH.NewInventoryHandler(invUC, appLogger)

	// 8. HTTP Server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID, middleware.Logger(appLogger), middleware.Metrics, auth.MerchantHeader)

	e.GET("/healthz", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.Handler()))
	}

	admin := e.Group("/api/admin")
	catHandler.Register(admin)
	prodHandler.Register(admin)
	varHTTP.RegisterAdmin(admin)
	invHandler.Register(admin)

	store := e.Group("/api/store")
	varHTTP.RegisterStore(store)

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := e.Start(listenAddr(cfg.Server.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 9. gRPC Server
	port := listenAddr(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.ContextInterceptor(appLogger)),
	)

	varH.RegisterVariationServiceServer(grpcServer, varGRPC)
	invH.RegisterStockServiceServer(grpcServer, invHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	appLogger.Info("Server stopped")
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
