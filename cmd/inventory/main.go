// InventoryService 主程序
// 功能：提供商品库存与订单管理服务，包括商品建档、库存扣减、下单、订单状态流转等
// 架构：基于 DDD + Gin + GORM + Kafka
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/wyfcoding/inventoryorder/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/inventoryorder/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/inventoryorder/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/inventoryorder/internal/catalog/infrastructure/persistence/mysql"
	catalogredis "github.com/wyfcoding/inventoryorder/internal/catalog/infrastructure/persistence/redis"
	cataloghttp "github.com/wyfcoding/inventoryorder/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/inventoryorder/internal/order/application"
	orderdomain "github.com/wyfcoding/inventoryorder/internal/order/domain"
	ordermessaging "github.com/wyfcoding/inventoryorder/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/inventoryorder/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/inventoryorder/internal/order/interfaces/http"
	"github.com/wyfcoding/inventoryorder/pkg/cache"
	"github.com/wyfcoding/inventoryorder/pkg/config"
	"github.com/wyfcoding/inventoryorder/pkg/db"
	"github.com/wyfcoding/inventoryorder/pkg/logger"
	"github.com/wyfcoding/inventoryorder/pkg/metrics"
	"github.com/wyfcoding/inventoryorder/pkg/middleware"
	"github.com/wyfcoding/inventoryorder/pkg/mq"
	"github.com/wyfcoding/inventoryorder/pkg/ratelimit"
	"github.com/wyfcoding/inventoryorder/pkg/trace"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// 1. 加载配置
	configPath := config.GetEnv("APP_CONFIG", "configs/inventory/config.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting InventoryService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(cfg.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SamplingRate)
		if err != nil {
			logger.Error(ctx, "Failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()
			logger.Info(ctx, "Tracer initialized", "endpoint", cfg.Tracing.CollectorEndpoint)
		}
	}

	// 4. 初始化数据库
	dbCfg := db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}
	database, err := db.Init(dbCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database schema", "error", err)
	}

	// 5. 初始化 Redis 商品缓存（未启用时退化为直读数据库）
	var redisCache *cache.RedisCache
	var productCache catalogapp.ProductCache = catalogredis.NoopCache{}
	if cfg.Redis.Enabled {
		redisCfg := cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}
		redisCache, err = cache.New(redisCfg)
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
		}
		defer redisCache.Close()
		productCache = catalogredis.NewProductRedisCache(redisCache, time.Duration(cfg.Redis.CacheTTL)*time.Second)
	}

	// 6. 初始化 Kafka 事件发布（未配置 broker 时使用空实现）
	var catalogPublisher catalogdomain.EventPublisher = catalogmessaging.NoopPublisher{}
	var orderPublisher orderdomain.EventPublisher = ordermessaging.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
		}
		defer producer.Close()
		catalogPublisher = catalogmessaging.NewKafkaPublisher(producer)
		orderPublisher = ordermessaging.NewKafkaPublisher(producer)
	}

	// 7. 初始化指标
	var collector metrics.Collector = metrics.NoopCollector{}
	var metricsInstance *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsInstance = metrics.New(cfg.ServiceName)
		if err := metricsInstance.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
		collector = metrics.NewDefaultCollector(metricsInstance)
	}

	// 8. 初始化仓储
	productRepo := catalogmysql.NewProductRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database.DB)

	// 9. 初始化应用服务
	catalogService := catalogapp.NewCatalogService(productRepo, productCache, catalogPublisher, collector)
	orderCommandService := orderapp.NewOrderCommandService(orderRepo, productRepo, productCache, orderPublisher, catalogPublisher, collector, database.DB)
	orderQueryService := orderapp.NewOrderQueryService(orderRepo)

	// 10. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, metricsInstance, redisCache, catalogService, orderCommandService, orderQueryService)

	// 11. 启动 HTTP 服务器
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 12. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down InventoryService")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	logger.Info(ctx, "InventoryService stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(
	cfg *config.Config,
	metricsInstance *metrics.Metrics,
	redisCache *cache.RedisCache,
	catalogService *catalogapp.CatalogService,
	orderCommandService *orderapp.OrderCommandService,
	orderQueryService *orderapp.OrderQueryService,
) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	if metricsInstance != nil {
		router.Use(middleware.GinMetricsMiddleware(metricsInstance))
	}
	// Redis 可用时走分布式配额，否则退化为单实例令牌桶
	if cfg.RateLimit.Enabled {
		if redisCache != nil {
			limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
			router.Use(middleware.GinRedisRateLimitMiddleware(limiter, ratelimit.PerSecond(int(cfg.RateLimit.RefillRate))))
		} else {
			limiter := middleware.NewRateLimiter(cfg.RateLimit.MaxTokens, cfg.RateLimit.RefillRate)
			router.Use(middleware.GinRateLimitMiddleware(limiter))
		}
	}

	// 注册路由
	root := router.Group("")
	productHandler := cataloghttp.NewProductHandler(catalogService, cfg.Pagination)
	productHandler.RegisterRoutes(root)
	orderHandler := orderhttp.NewOrderHandler(orderCommandService, orderQueryService)
	orderHandler.RegisterRoutes(root)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
