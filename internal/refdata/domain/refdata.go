// Package domain 包含参考数据（交易所、资产类别）的领域模型
package domain

import (
	"context"

	"gorm.io/gorm"
)

// Exchange 交易所，按名称引用
type Exchange struct {
	gorm.Model
	Name     string `gorm:"column:name;type:varchar(255);uniqueIndex;not null" json:"name"`
	AltName  string `gorm:"column:alt_name;type:varchar(255)" json:"alt_name"`
	IsActive bool   `gorm:"column:is_active;not null" json:"is_active"`
}

func (Exchange) TableName() string {
	return "exchanges"
}

// NewExchange 创建交易所
func NewExchange(name, altName string, isActive bool) *Exchange {
	return &Exchange{
		Name:     name,
		AltName:  altName,
		IsActive: isActive,
	}
}

// AssetClass 资产类别，与交易所同构
type AssetClass struct {
	gorm.Model
	Name     string `gorm:"column:name;type:varchar(255);uniqueIndex;not null" json:"name"`
	AltName  string `gorm:"column:alt_name;type:varchar(255)" json:"alt_name"`
	IsActive bool   `gorm:"column:is_active;not null" json:"is_active"`
}

func (AssetClass) TableName() string {
	return "asset_classes"
}

// NewAssetClass 创建资产类别
func NewAssetClass(name, altName string, isActive bool) *AssetClass {
	return &AssetClass{
		Name:     name,
		AltName:  altName,
		IsActive: isActive,
	}
}

// ExchangeRepository 交易所仓储接口
type ExchangeRepository interface {
	// List 返回全部交易所
	List(ctx context.Context) ([]*Exchange, error)
	// GetByName 按名称查询，不存在时返回 nil
	GetByName(ctx context.Context, name string) (*Exchange, error)
	// Save 插入或更新
	Save(ctx context.Context, exchange *Exchange) error
	// Delete 按名称删除
	Delete(ctx context.Context, name string) error
}

// AssetClassRepository 资产类别仓储接口
type AssetClassRepository interface {
	List(ctx context.Context) ([]*AssetClass, error)
	GetByName(ctx context.Context, name string) (*AssetClass, error)
	Save(ctx context.Context, assetClass *AssetClass) error
	Delete(ctx context.Context, name string) error
}
