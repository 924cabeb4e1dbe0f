// Package mysql 提供参考数据仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlasquant/tradedesk/internal/refdata/domain"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"gorm.io/gorm"
)

type exchangeRepositoryImpl struct {
	db *gorm.DB
}

// NewExchangeRepository 创建交易所仓储实例
func NewExchangeRepository(db *gorm.DB) domain.ExchangeRepository {
	return &exchangeRepositoryImpl{db: db}
}

// List 实现 domain.ExchangeRepository.List
func (r *exchangeRepositoryImpl) List(ctx context.Context) ([]*domain.Exchange, error) {
	var exchanges []*domain.Exchange
	if err := r.db.WithContext(ctx).Find(&exchanges).Error; err != nil {
		logger.Error(ctx, "exchange_repository.list failed", "error", err)
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}

// GetByName 实现 domain.ExchangeRepository.GetByName
func (r *exchangeRepositoryImpl) GetByName(ctx context.Context, name string) (*domain.Exchange, error) {
	var exchange domain.Exchange
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&exchange).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "exchange_repository.get_by_name failed", "name", name, "error", err)
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return &exchange, nil
}

// Save 实现 domain.ExchangeRepository.Save
func (r *exchangeRepositoryImpl) Save(ctx context.Context, exchange *domain.Exchange) error {
	if err := r.db.WithContext(ctx).Save(exchange).Error; err != nil {
		logger.Error(ctx, "exchange_repository.save failed", "name", exchange.Name, "error", err)
		return fmt.Errorf("failed to save exchange: %w", err)
	}
	return nil
}

// Delete 实现 domain.ExchangeRepository.Delete
func (r *exchangeRepositoryImpl) Delete(ctx context.Context, name string) error {
	if err := r.db.WithContext(ctx).Where("name = ?", name).Delete(&domain.Exchange{}).Error; err != nil {
		logger.Error(ctx, "exchange_repository.delete failed", "name", name, "error", err)
		return fmt.Errorf("failed to delete exchange: %w", err)
	}
	return nil
}

type assetClassRepositoryImpl struct {
	db *gorm.DB
}

// NewAssetClassRepository 创建资产类别仓储实例
func NewAssetClassRepository(db *gorm.DB) domain.AssetClassRepository {
	return &assetClassRepositoryImpl{db: db}
}

// List 实现 domain.AssetClassRepository.List
func (r *assetClassRepositoryImpl) List(ctx context.Context) ([]*domain.AssetClass, error) {
	var assetClasses []*domain.AssetClass
	if err := r.db.WithContext(ctx).Find(&assetClasses).Error; err != nil {
		logger.Error(ctx, "asset_class_repository.list failed", "error", err)
		return nil, fmt.Errorf("failed to list asset classes: %w", err)
	}
	return assetClasses, nil
}

// GetByName 实现 domain.AssetClassRepository.GetByName
func (r *assetClassRepositoryImpl) GetByName(ctx context.Context, name string) (*domain.AssetClass, error) {
	var assetClass domain.AssetClass
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&assetClass).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "asset_class_repository.get_by_name failed", "name", name, "error", err)
		return nil, fmt.Errorf("failed to get asset class: %w", err)
	}
	return &assetClass, nil
}

// Save 实现 domain.AssetClassRepository.Save
func (r *assetClassRepositoryImpl) Save(ctx context.Context, assetClass *domain.AssetClass) error {
	if err := r.db.WithContext(ctx).Save(assetClass).Error; err != nil {
		logger.Error(ctx, "asset_class_repository.save failed", "name", assetClass.Name, "error", err)
		return fmt.Errorf("failed to save asset class: %w", err)
	}
	return nil
}

// Delete 实现 domain.AssetClassRepository.Delete
func (r *assetClassRepositoryImpl) Delete(ctx context.Context, name string) error {
	if err := r.db.WithContext(ctx).Where("name = ?", name).Delete(&domain.AssetClass{}).Error; err != nil {
		logger.Error(ctx, "asset_class_repository.delete failed", "name", name, "error", err)
		return fmt.Errorf("failed to delete asset class: %w", err)
	}
	return nil
}
