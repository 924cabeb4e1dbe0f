// Package application 提供参考数据的应用服务
package application

import (
	"context"

	"github.com/atlasquant/tradedesk/internal/refdata/domain"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/atlasquant/tradedesk/pkg/logger"
)

// CreateCommand 创建参考数据命令
type CreateCommand struct {
	Name     string
	AltName  string
	IsActive *bool
}

// UpdateCommand 部分更新命令，nil 字段不变更
type UpdateCommand struct {
	Name     *string
	AltName  *string
	IsActive *bool
}

// ReferenceDataService 参考数据应用服务
type ReferenceDataService struct {
	exchanges    domain.ExchangeRepository
	assetClasses domain.AssetClassRepository
}

// NewReferenceDataService 创建参考数据应用服务
func NewReferenceDataService(exchanges domain.ExchangeRepository, assetClasses domain.AssetClassRepository) *ReferenceDataService {
	return &ReferenceDataService{exchanges: exchanges, assetClasses: assetClasses}
}

// ListExchanges 列出全部交易所
func (s *ReferenceDataService) ListExchanges(ctx context.Context) ([]*domain.Exchange, error) {
	return s.exchanges.List(ctx)
}

// GetExchange 按名称获取交易所
func (s *ReferenceDataService) GetExchange(ctx context.Context, name string) (*domain.Exchange, error) {
	exchange, err := s.exchanges.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exchange == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "exchange %q not found", name)
	}
	return exchange, nil
}

// CreateExchange 创建交易所，名称重复时返回 Conflict
func (s *ReferenceDataService) CreateExchange(ctx context.Context, cmd CreateCommand) (*domain.Exchange, error) {
	if cmd.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "name is required").WithField("name", "required")
	}

	existing, err := s.exchanges.GetByName(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.KindConflict, "exchange %q already exists", cmd.Name).WithField("name", "already exists")
	}

	isActive := true
	if cmd.IsActive != nil {
		isActive = *cmd.IsActive
	}
	exchange := domain.NewExchange(cmd.Name, cmd.AltName, isActive)
	if err := s.exchanges.Save(ctx, exchange); err != nil {
		return nil, err
	}

	logger.Info(ctx, "exchange created", "name", exchange.Name)
	return exchange, nil
}

// UpdateExchange 部分更新交易所
func (s *ReferenceDataService) UpdateExchange(ctx context.Context, name string, cmd UpdateCommand) (*domain.Exchange, error) {
	exchange, err := s.GetExchange(ctx, name)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil && *cmd.Name != exchange.Name {
		if *cmd.Name == "" {
			return nil, apperr.New(apperr.KindValidation, "name must not be empty").WithField("name", "required")
		}
		// 改名前检查目标名称未被占用
		other, err := s.exchanges.GetByName(ctx, *cmd.Name)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apperr.Newf(apperr.KindConflict, "exchange %q already exists", *cmd.Name).WithField("name", "already exists")
		}
		exchange.Name = *cmd.Name
	}
	if cmd.AltName != nil {
		exchange.AltName = *cmd.AltName
	}
	if cmd.IsActive != nil {
		exchange.IsActive = *cmd.IsActive
	}

	if err := s.exchanges.Save(ctx, exchange); err != nil {
		return nil, err
	}
	return exchange, nil
}

// DeleteExchange 按名称删除交易所
func (s *ReferenceDataService) DeleteExchange(ctx context.Context, name string) error {
	if _, err := s.GetExchange(ctx, name); err != nil {
		return err
	}
	return s.exchanges.Delete(ctx, name)
}

// ListAssetClasses 列出全部资产类别
func (s *ReferenceDataService) ListAssetClasses(ctx context.Context) ([]*domain.AssetClass, error) {
	return s.assetClasses.List(ctx)
}

// GetAssetClass 按名称获取资产类别
func (s *ReferenceDataService) GetAssetClass(ctx context.Context, name string) (*domain.AssetClass, error) {
	assetClass, err := s.assetClasses.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if assetClass == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "asset class %q not found", name)
	}
	return assetClass, nil
}

// CreateAssetClass 创建资产类别，名称重复时返回 Conflict
func (s *ReferenceDataService) CreateAssetClass(ctx context.Context, cmd CreateCommand) (*domain.AssetClass, error) {
	if cmd.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "name is required").WithField("name", "required")
	}

	existing, err := s.assetClasses.GetByName(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.KindConflict, "asset class %q already exists", cmd.Name).WithField("name", "already exists")
	}

	isActive := true
	if cmd.IsActive != nil {
		isActive = *cmd.IsActive
	}
	assetClass := domain.NewAssetClass(cmd.Name, cmd.AltName, isActive)
	if err := s.assetClasses.Save(ctx, assetClass); err != nil {
		return nil, err
	}

	logger.Info(ctx, "asset class created", "name", assetClass.Name)
	return assetClass, nil
}

// UpdateAssetClass 部分更新资产类别
func (s *ReferenceDataService) UpdateAssetClass(ctx context.Context, name string, cmd UpdateCommand) (*domain.AssetClass, error) {
	assetClass, err := s.GetAssetClass(ctx, name)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil && *cmd.Name != assetClass.Name {
		if *cmd.Name == "" {
			return nil, apperr.New(apperr.KindValidation, "name must not be empty").WithField("name", "required")
		}
		other, err := s.assetClasses.GetByName(ctx, *cmd.Name)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apperr.Newf(apperr.KindConflict, "asset class %q already exists", *cmd.Name).WithField("name", "already exists")
		}
		assetClass.Name = *cmd.Name
	}
	if cmd.AltName != nil {
		assetClass.AltName = *cmd.AltName
	}
	if cmd.IsActive != nil {
		assetClass.IsActive = *cmd.IsActive
	}

	if err := s.assetClasses.Save(ctx, assetClass); err != nil {
		return nil, err
	}
	return assetClass, nil
}

// DeleteAssetClass 按名称删除资产类别
func (s *ReferenceDataService) DeleteAssetClass(ctx context.Context, name string) error {
	if _, err := s.GetAssetClass(ctx, name); err != nil {
		return err
	}
	return s.assetClasses.Delete(ctx, name)
}
