package marketsync

import (
	"context"
	"time"

	assetapp "github.com/atlasquant/tradedesk/internal/asset/application"
	assetdomain "github.com/atlasquant/tradedesk/internal/asset/domain"
	refapp "github.com/atlasquant/tradedesk/internal/refdata/application"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"github.com/atlasquant/tradedesk/pkg/metrics"
)

// Provider 同步任务依赖的提供方接口
type Provider interface {
	AccountInfo(ctx context.Context) (*Account, error)
	ListAssets(ctx context.Context) ([]ProviderAsset, error)
}

// Service 资产同步任务。按固定间隔拉取提供方资产目录，
// 以资产 ID 为自然键幂等写入，重复执行安全。
type Service struct {
	provider Provider
	assets   *assetapp.AssetService
	refdata  *refapp.ReferenceDataService
	events   assetdomain.EventPublisher
	metrics  *metrics.Metrics
	interval time.Duration
}

// NewService 创建同步任务。events 与 metrics 允许为 nil。
func NewService(provider Provider, assets *assetapp.AssetService, refdata *refapp.ReferenceDataService, events assetdomain.EventPublisher, m *metrics.Metrics, interval time.Duration) *Service {
	return &Service{
		provider: provider,
		assets:   assets,
		refdata:  refdata,
		events:   events,
		metrics:  m,
		interval: interval,
	}
}

// Run 启动同步循环，启动时立即执行一轮，之后按间隔执行，ctx 取消后返回
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "同步任务退出")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle 执行一轮同步，失败只记录不中断循环
func (s *Service) runCycle(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.SyncCyclesTotal.Inc()
	}
	synced, err := s.SyncOnce(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SyncFailuresTotal.Inc()
		}
		logger.Error(ctx, "资产同步失败", "error", err)
		return
	}
	logger.Info(ctx, "资产同步完成", "synced", synced)
}

// SyncOnce 执行一轮完整同步，返回成功写入的资产数
func (s *Service) SyncOnce(ctx context.Context) (int, error) {
	account, err := s.provider.AccountInfo(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "提供方账户检查通过", "account_id", account.ID, "status", account.Status)

	rows, err := s.provider.ListAssets(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, row := range rows {
		if err := s.syncAsset(ctx, row); err != nil {
			logger.Warn(ctx, "跳过资产", "symbol", row.Symbol, "error", err)
			continue
		}
		synced++
	}
	if s.metrics != nil {
		s.metrics.AssetsSyncedTotal.Add(float64(synced))
		if total, err := s.assets.Count(ctx); err == nil {
			s.metrics.AssetsRegistered.Set(float64(total))
		}
	}
	return synced, nil
}

// syncAsset 写入单行资产，缺失的交易所与资产类别先行登记
func (s *Service) syncAsset(ctx context.Context, row ProviderAsset) error {
	if err := s.ensureExchange(ctx, row.Exchange); err != nil {
		return err
	}
	if err := s.ensureAssetClass(ctx, row.Class); err != nil {
		return err
	}

	asset, err := s.assets.Upsert(ctx, assetapp.CreateAssetCommand{
		AssetID:      row.ID,
		Name:         row.Name,
		Symbol:       row.Symbol,
		AssetClass:   row.Class,
		Exchange:     row.Exchange,
		Status:       row.Status,
		Tradable:     row.Tradable,
		Marginable:   row.Marginable,
		Shortable:    row.Shortable,
		EasyToBorrow: row.EasyToBorrow,
	})
	if err != nil {
		return err
	}
	if s.events != nil {
		if err := s.events.PublishAssetSynced(ctx, asset); err != nil {
			logger.Warn(ctx, "发布资产同步事件失败", "symbol", asset.Symbol, "error", err)
		}
	}
	return nil
}

func (s *Service) ensureExchange(ctx context.Context, name string) error {
	if name == "" {
		return apperr.New(apperr.KindValidation, "provider row has no exchange")
	}
	existing, err := s.refdata.GetExchange(ctx, name)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.refdata.CreateExchange(ctx, refapp.CreateCommand{Name: name})
	if apperr.IsKind(err, apperr.KindConflict) {
		// 并发写入时已被其他周期登记
		return nil
	}
	return err
}

func (s *Service) ensureAssetClass(ctx context.Context, name string) error {
	if name == "" {
		return apperr.New(apperr.KindValidation, "provider row has no asset class")
	}
	existing, err := s.refdata.GetAssetClass(ctx, name)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.refdata.CreateAssetClass(ctx, refapp.CreateCommand{Name: name})
	if apperr.IsKind(err, apperr.KindConflict) {
		return nil
	}
	return err
}
