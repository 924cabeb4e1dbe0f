// Package mysql 提供资产仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlasquant/tradedesk/internal/asset/domain"
	"github.com/atlasquant/tradedesk/pkg/db"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"gorm.io/gorm"
)

type assetRepositoryImpl struct {
	db *gorm.DB
}

// NewAssetRepository 创建资产仓储实例
func NewAssetRepository(db *gorm.DB) domain.AssetRepository {
	return &assetRepositoryImpl{db: db}
}

// List 实现 domain.AssetRepository.List
func (r *assetRepositoryImpl) List(ctx context.Context) ([]*domain.Asset, error) {
	var assets []*domain.Asset
	if err := r.db.WithContext(ctx).Find(&assets).Error; err != nil {
		logger.Error(ctx, "asset_repository.list failed", "error", err)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// GetByID 实现 domain.AssetRepository.GetByID
func (r *assetRepositoryImpl) GetByID(ctx context.Context, assetID string) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "asset_repository.get_by_id failed", "asset_id", assetID, "error", err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// GetBySymbol 实现 domain.AssetRepository.GetBySymbol
func (r *assetRepositoryImpl) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "asset_repository.get_by_symbol failed", "symbol", symbol, "error", err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// Save 实现 domain.AssetRepository.Save
func (r *assetRepositoryImpl) Save(ctx context.Context, asset *domain.Asset) error {
	if err := r.db.WithContext(ctx).Save(asset).Error; err != nil {
		logger.Error(ctx, "asset_repository.save failed", "asset_id", asset.AssetID, "error", err)
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

// Upsert 实现 domain.AssetRepository.Upsert
// 以 asset_id 为冲突键，冲突时覆盖可变字段（ON CONFLICT ... DO UPDATE）
func (r *assetRepositoryImpl) Upsert(ctx context.Context, asset *domain.Asset) error {
	err := db.UpsertWithConflict(ctx, r.db, asset,
		[]string{"asset_id"},
		[]string{
			"name", "symbol", "asset_class", "exchange", "status",
			"tradable", "marginable", "shortable", "easy_to_borrow", "updated_at",
		})
	if err != nil {
		logger.Error(ctx, "asset_repository.upsert failed", "asset_id", asset.AssetID, "error", err)
		return fmt.Errorf("failed to upsert asset: %w", err)
	}
	return nil
}

// Delete 实现 domain.AssetRepository.Delete
func (r *assetRepositoryImpl) Delete(ctx context.Context, assetID string) error {
	if err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).Delete(&domain.Asset{}).Error; err != nil {
		logger.Error(ctx, "asset_repository.delete failed", "asset_id", assetID, "error", err)
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// Count 实现 domain.AssetRepository.Count
func (r *assetRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Asset{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}
