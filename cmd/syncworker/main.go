package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	assetapp "github.com/atlasquant/tradedesk/internal/asset/application"
	assetdomain "github.com/atlasquant/tradedesk/internal/asset/domain"
	assetmsg "github.com/atlasquant/tradedesk/internal/asset/infrastructure/messaging"
	assetmysql "github.com/atlasquant/tradedesk/internal/asset/infrastructure/persistence/mysql"
	"github.com/atlasquant/tradedesk/internal/marketsync"
	ordermysql "github.com/atlasquant/tradedesk/internal/order/infrastructure/persistence/mysql"
	refapp "github.com/atlasquant/tradedesk/internal/refdata/application"
	refdomain "github.com/atlasquant/tradedesk/internal/refdata/domain"
	refmysql "github.com/atlasquant/tradedesk/internal/refdata/infrastructure/persistence/mysql"
	"github.com/atlasquant/tradedesk/pkg/config"
	"github.com/atlasquant/tradedesk/pkg/db"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"github.com/atlasquant/tradedesk/pkg/metrics"
	"github.com/atlasquant/tradedesk/pkg/mq"
)

func main() {
	configPath := flag.String("config", "configs/syncworker/config.toml", "配置文件路径")
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

	logger.Info(ctx, "同步任务启动中", "service", cfg.ServiceName, "version", cfg.Version, "interval_s", cfg.Sync.Interval)

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

	if err := database.AutoMigrate(&refdomain.Exchange{}, &refdomain.AssetClass{}, &assetdomain.Asset{}); err != nil {
		logger.Fatal(ctx, "数据库迁移失败", "error", err)
	}

	exchangeRepo := refmysql.NewExchangeRepository(database.DB)
	assetClassRepo := refmysql.NewAssetClassRepository(database.DB)
	assetRepo := assetmysql.NewAssetRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database.DB)

	var events assetdomain.EventPublisher
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
		events = assetmsg.NewKafkaEventPublisher(producer)
	}

	m := metrics.New("syncworker")
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "注册指标失败", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "启动指标服务失败", "error", err)
		}
	}

	refService := refapp.NewReferenceDataService(exchangeRepo, assetClassRepo)
	assetService := assetapp.NewAssetService(assetRepo, exchangeRepo, assetClassRepo, orderRepo)
	provider := marketsync.NewProviderClient(cfg.Sync)

	service := marketsync.NewService(
		provider,
		assetService,
		refService,
		events,
		m,
		time.Duration(cfg.Sync.Interval)*time.Second,
	)
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(context.Background(), "同步任务异常退出", "error", err)
	}
	logger.Info(context.Background(), "同步任务已退出")
}
