// Package application 提供资产注册表的应用服务
package application

import (
	"context"

	"github.com/atlasquant/tradedesk/internal/asset/domain"
	refdomain "github.com/atlasquant/tradedesk/internal/refdata/domain"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"github.com/google/uuid"
)

// CreateAssetCommand 创建资产命令
type CreateAssetCommand struct {
	AssetID      string
	Name         string
	Symbol       string
	AssetClass   string
	Exchange     string
	Status       string
	Tradable     bool
	Marginable   bool
	Shortable    bool
	EasyToBorrow bool
}

// UpdateAssetCommand 部分更新命令，nil 字段不变更
type UpdateAssetCommand struct {
	Name         *string
	Symbol       *string
	AssetClass   *string
	Exchange     *string
	Status       *string
	Tradable     *bool
	Marginable   *bool
	Shortable    *bool
	EasyToBorrow *bool
}

// AssetService 资产应用服务
type AssetService struct {
	assets       domain.AssetRepository
	exchanges    refdomain.ExchangeRepository
	assetClasses refdomain.AssetClassRepository
	orderRefs    domain.OrderRefChecker
}

// NewAssetService 创建资产应用服务
func NewAssetService(
	assets domain.AssetRepository,
	exchanges refdomain.ExchangeRepository,
	assetClasses refdomain.AssetClassRepository,
	orderRefs domain.OrderRefChecker,
) *AssetService {
	return &AssetService{
		assets:       assets,
		exchanges:    exchanges,
		assetClasses: assetClasses,
		orderRefs:    orderRefs,
	}
}

// List 列出全部资产
func (s *AssetService) List(ctx context.Context) ([]*domain.Asset, error) {
	return s.assets.List(ctx)
}

// Get 按资产 ID 获取
func (s *AssetService) Get(ctx context.Context, assetID string) (*domain.Asset, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "asset %q not found", assetID)
	}
	return asset, nil
}

// Create 创建资产。exchange/asset_class 名称必须可解析，否则校验失败。
func (s *AssetService) Create(ctx context.Context, cmd CreateAssetCommand) (*domain.Asset, error) {
	if cmd.Symbol == "" {
		return nil, apperr.New(apperr.KindValidation, "symbol is required").WithField("symbol", "required")
	}
	if cmd.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "name is required").WithField("name", "required")
	}

	status := domain.AssetStatus(cmd.Status)
	if cmd.Status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.KindValidation, "invalid status %q", cmd.Status).WithField("status", "must be active or inactive")
	}

	assetID := cmd.AssetID
	if assetID == "" {
		assetID = uuid.New().String()
	} else if _, err := uuid.Parse(assetID); err != nil {
		return nil, apperr.New(apperr.KindValidation, "id must be a UUID").WithField("id", "malformed UUID")
	}

	if err := s.resolveReferences(ctx, cmd.Exchange, cmd.AssetClass); err != nil {
		return nil, err
	}

	existing, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.KindConflict, "asset %q already exists", assetID).WithField("id", "already exists")
	}
	bySymbol, err := s.assets.GetBySymbol(ctx, cmd.Symbol)
	if err != nil {
		return nil, err
	}
	if bySymbol != nil {
		return nil, apperr.Newf(apperr.KindConflict, "symbol %q already registered", cmd.Symbol).WithField("symbol", "already exists")
	}

	asset := &domain.Asset{
		AssetID:      assetID,
		Name:         cmd.Name,
		Symbol:       cmd.Symbol,
		AssetClass:   cmd.AssetClass,
		Exchange:     cmd.Exchange,
		Status:       status,
		Tradable:     cmd.Tradable,
		Marginable:   cmd.Marginable,
		Shortable:    cmd.Shortable,
		EasyToBorrow: cmd.EasyToBorrow,
	}
	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, err
	}

	logger.Info(ctx, "asset created", "asset_id", asset.AssetID, "symbol", asset.Symbol)
	return asset, nil
}

// Update 部分更新资产，引用字段变更时重新解析。符号仍被订单引用时拒绝改名。
func (s *AssetService) Update(ctx context.Context, assetID string, cmd UpdateAssetCommand) (*domain.Asset, error) {
	asset, err := s.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}

	exchange := asset.Exchange
	if cmd.Exchange != nil {
		exchange = *cmd.Exchange
	}
	assetClass := asset.AssetClass
	if cmd.AssetClass != nil {
		assetClass = *cmd.AssetClass
	}
	if cmd.Exchange != nil || cmd.AssetClass != nil {
		if err := s.resolveReferences(ctx, exchange, assetClass); err != nil {
			return nil, err
		}
	}

	if cmd.Symbol != nil && *cmd.Symbol != asset.Symbol {
		if *cmd.Symbol == "" {
			return nil, apperr.New(apperr.KindValidation, "symbol must not be empty").WithField("symbol", "required")
		}
		refs, err := s.orderRefs.CountBySymbol(ctx, asset.Symbol)
		if err != nil {
			return nil, err
		}
		if refs > 0 {
			return nil, apperr.Newf(apperr.KindConflict, "asset %q is referenced by %d order(s)", asset.Symbol, refs).
				WithField("symbol", "referenced by existing orders")
		}
		other, err := s.assets.GetBySymbol(ctx, *cmd.Symbol)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apperr.Newf(apperr.KindConflict, "symbol %q already registered", *cmd.Symbol).WithField("symbol", "already exists")
		}
		asset.Symbol = *cmd.Symbol
	}

	if cmd.Status != nil {
		status := domain.AssetStatus(*cmd.Status)
		if !status.Valid() {
			return nil, apperr.Newf(apperr.KindValidation, "invalid status %q", *cmd.Status).WithField("status", "must be active or inactive")
		}
		asset.Status = status
	}
	if cmd.Name != nil {
		asset.Name = *cmd.Name
	}
	asset.Exchange = exchange
	asset.AssetClass = assetClass
	if cmd.Tradable != nil {
		asset.Tradable = *cmd.Tradable
	}
	if cmd.Marginable != nil {
		asset.Marginable = *cmd.Marginable
	}
	if cmd.Shortable != nil {
		asset.Shortable = *cmd.Shortable
	}
	if cmd.EasyToBorrow != nil {
		asset.EasyToBorrow = *cmd.EasyToBorrow
	}

	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Delete 删除资产。仍被订单引用时拒绝，不做级联。
func (s *AssetService) Delete(ctx context.Context, assetID string) error {
	asset, err := s.Get(ctx, assetID)
	if err != nil {
		return err
	}

	refs, err := s.orderRefs.CountBySymbol(ctx, asset.Symbol)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Newf(apperr.KindConflict, "asset %q is referenced by %d order(s)", asset.Symbol, refs).
			WithField("symbol", "referenced by existing orders")
	}

	return s.assets.Delete(ctx, assetID)
}

// Upsert 幂等写入，供同步任务调用。以资产 ID 为自然键，后写覆盖。
// 返回写入后的资产。
func (s *AssetService) Upsert(ctx context.Context, cmd CreateAssetCommand) (*domain.Asset, error) {
	if cmd.AssetID == "" {
		return nil, apperr.New(apperr.KindValidation, "id is required for upsert").WithField("id", "required")
	}
	if _, err := uuid.Parse(cmd.AssetID); err != nil {
		return nil, apperr.New(apperr.KindValidation, "id must be a UUID").WithField("id", "malformed UUID")
	}
	if cmd.Symbol == "" {
		return nil, apperr.New(apperr.KindValidation, "symbol is required").WithField("symbol", "required")
	}

	status := domain.AssetStatus(cmd.Status)
	if cmd.Status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.KindValidation, "invalid status %q", cmd.Status).WithField("status", "must be active or inactive")
	}

	if err := s.resolveReferences(ctx, cmd.Exchange, cmd.AssetClass); err != nil {
		return nil, err
	}

	asset := &domain.Asset{
		AssetID:      cmd.AssetID,
		Name:         cmd.Name,
		Symbol:       cmd.Symbol,
		AssetClass:   cmd.AssetClass,
		Exchange:     cmd.Exchange,
		Status:       status,
		Tradable:     cmd.Tradable,
		Marginable:   cmd.Marginable,
		Shortable:    cmd.Shortable,
		EasyToBorrow: cmd.EasyToBorrow,
	}
	if err := s.assets.Upsert(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Count 资产总数
func (s *AssetService) Count(ctx context.Context) (int64, error) {
	return s.assets.Count(ctx)
}

// resolveReferences 确认 exchange 和 asset_class 名称都能解析到参考数据行
func (s *AssetService) resolveReferences(ctx context.Context, exchange, assetClass string) error {
	if exchange == "" {
		return apperr.New(apperr.KindValidation, "exchange is required").WithField("exchange", "required")
	}
	if assetClass == "" {
		return apperr.New(apperr.KindValidation, "asset_class is required").WithField("asset_class", "required")
	}

	resolved, err := s.exchanges.GetByName(ctx, exchange)
	if err != nil {
		return err
	}
	if resolved == nil {
		return apperr.Newf(apperr.KindValidation, "unresolved exchange %q", exchange).WithField("exchange", "does not exist")
	}

	resolvedClass, err := s.assetClasses.GetByName(ctx, assetClass)
	if err != nil {
		return err
	}
	if resolvedClass == nil {
		return apperr.Newf(apperr.KindValidation, "unresolved asset_class %q", assetClass).WithField("asset_class", "does not exist")
	}
	return nil
}
