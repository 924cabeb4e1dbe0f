package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	assetapp "github.com/atlasquant/tradedesk/internal/asset/application"
	assetdomain "github.com/atlasquant/tradedesk/internal/asset/domain"
	assetmysql "github.com/atlasquant/tradedesk/internal/asset/infrastructure/persistence/mysql"
	assethttp "github.com/atlasquant/tradedesk/internal/asset/interfaces/http"
	authapp "github.com/atlasquant/tradedesk/internal/auth/application"
	authdomain "github.com/atlasquant/tradedesk/internal/auth/domain"
	authmysql "github.com/atlasquant/tradedesk/internal/auth/infrastructure/persistence/mysql"
	authhttp "github.com/atlasquant/tradedesk/internal/auth/interfaces/http"
	orderapp "github.com/atlasquant/tradedesk/internal/order/application"
	orderdomain "github.com/atlasquant/tradedesk/internal/order/domain"
	ordermsg "github.com/atlasquant/tradedesk/internal/order/infrastructure/messaging"
	ordermysql "github.com/atlasquant/tradedesk/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/atlasquant/tradedesk/internal/order/interfaces/http"
	refapp "github.com/atlasquant/tradedesk/internal/refdata/application"
	refdomain "github.com/atlasquant/tradedesk/internal/refdata/domain"
	refmysql "github.com/atlasquant/tradedesk/internal/refdata/infrastructure/persistence/mysql"
	refredis "github.com/atlasquant/tradedesk/internal/refdata/infrastructure/persistence/redis"
	refhttp "github.com/atlasquant/tradedesk/internal/refdata/interfaces/http"
	"github.com/atlasquant/tradedesk/pkg/cache"
	"github.com/atlasquant/tradedesk/pkg/config"
	"github.com/atlasquant/tradedesk/pkg/db"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"github.com/atlasquant/tradedesk/pkg/metrics"
	"github.com/atlasquant/tradedesk/pkg/middleware"
	"github.com/atlasquant/tradedesk/pkg/mq"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "configs/server/config.toml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "服务启动中", "service", cfg.ServiceName, "version", cfg.Version, "environment", cfg.Environment)

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "初始化数据库失败", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&authdomain.User{},
		&refdomain.Exchange{},
		&refdomain.AssetClass{},
		&assetdomain.Asset{},
		&ordermysql.OrderModel{},
	); err != nil {
		logger.Fatal(ctx, "数据库迁移失败", "error", err)
	}

	// 仓储层。启用 Redis 时参考数据走读缓存装饰器。
	exchangeRepo := refmysql.NewExchangeRepository(database.DB)
	assetClassRepo := refmysql.NewAssetClassRepository(database.DB)
	if cfg.Redis.Enabled {
		redisCache, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "初始化 Redis 失败", "error", err)
		}
		defer redisCache.Close()
		exchangeRepo = refredis.NewCachedExchangeRepository(exchangeRepo, redisCache)
		assetClassRepo = refredis.NewCachedAssetClassRepository(assetClassRepo, redisCache)
	}
	userRepo := authmysql.NewUserRepository(database.DB)
	assetRepo := assetmysql.NewAssetRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database.DB)

	// 事件发布，未启用 Kafka 时保持 nil
	var orderEvents orderdomain.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "初始化 Kafka 失败", "error", err)
		}
		defer producer.Close()
		orderEvents = ordermsg.NewKafkaEventPublisher(producer)
	}

	m := metrics.New("server")
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "注册指标失败", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "启动指标服务失败", "error", err)
		}
	}

	// 应用服务
	tokens := authapp.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	authService := authapp.NewAuthService(userRepo, tokens)
	refService := refapp.NewReferenceDataService(exchangeRepo, assetClassRepo)
	assetService := assetapp.NewAssetService(assetRepo, exchangeRepo, assetClassRepo, orderRepo)
	orderService := orderapp.NewOrderService(orderRepo, assetRepo, orderEvents, m)

	if cfg.Auth.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logger.Fatal(ctx, "初始化管理员账号失败", "error", err)
		}
	}

	router := buildRouter(cfg, m, tokens, authService, refService, assetService, orderService)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP 服务监听", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "HTTP 服务异常退出", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "收到退出信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP 服务关闭失败", "error", err)
	}
	logger.Info(context.Background(), "服务已退出")
}

// buildRouter 组装中间件与路由
func buildRouter(
	cfg *config.Config,
	m *metrics.Metrics,
	tokens *authapp.TokenManager,
	authService *authapp.AuthService,
	refService *refapp.ReferenceDataService,
	assetService *assetapp.AssetService,
	orderService *orderapp.OrderService,
) *gin.Engine {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinLoggingMiddleware(),
		middleware.GinRecoveryMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(200, 100)),
		metricsMiddleware(m),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName, "version": cfg.Version})
	})

	api := router.Group("/api/v1")
	authhttp.NewAuthHandler(authService).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authhttp.Authenticate(tokens))
	refhttp.NewReferenceDataHandler(refService).RegisterRoutes(protected)
	assethttp.NewAssetHandler(assetService).RegisterRoutes(protected)
	orderhttp.NewOrderHandler(orderService).RegisterRoutes(protected)

	return router
}

// metricsMiddleware 记录请求量与耗时
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.Observe(time.Since(start).Seconds())
	}
}
