// Package domain 包含资产注册表的领域模型
package domain

import (
	"context"

	"gorm.io/gorm"
)

// AssetStatus 资产状态
type AssetStatus string

const (
	StatusActive   AssetStatus = "active"
	StatusInactive AssetStatus = "inactive"
)

// Valid 判断状态是否合法
func (s AssetStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Asset 可交易资产。exchange 与 asset_class 以名称引用参考数据，
// 写入时必须能解析到已存在的行。
type Asset struct {
	gorm.Model
	AssetID      string      `gorm:"column:asset_id;type:varchar(36);uniqueIndex;not null" json:"id"`
	Name         string      `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Symbol       string      `gorm:"column:symbol;type:varchar(32);uniqueIndex;not null" json:"symbol"`
	AssetClass   string      `gorm:"column:asset_class;type:varchar(255);index;not null" json:"asset_class"`
	Exchange     string      `gorm:"column:exchange;type:varchar(255);index;not null" json:"exchange"`
	Status       AssetStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Tradable     bool        `gorm:"column:tradable;not null" json:"tradable"`
	Marginable   bool        `gorm:"column:marginable;not null" json:"marginable"`
	Shortable    bool        `gorm:"column:shortable;not null" json:"shortable"`
	EasyToBorrow bool        `gorm:"column:easy_to_borrow;not null" json:"easy_to_borrow"`
}

func (Asset) TableName() string {
	return "assets"
}

// AssetRepository 资产仓储接口
type AssetRepository interface {
	// List 返回全部资产
	List(ctx context.Context) ([]*Asset, error)
	// GetByID 按资产 ID 查询，不存在时返回 nil
	GetByID(ctx context.Context, assetID string) (*Asset, error)
	// GetBySymbol 按交易符号查询，不存在时返回 nil
	GetBySymbol(ctx context.Context, symbol string) (*Asset, error)
	// Save 插入或更新
	Save(ctx context.Context, asset *Asset) error
	// Upsert 以 asset_id 为自然键的幂等写入，后写覆盖
	Upsert(ctx context.Context, asset *Asset) error
	// Delete 按资产 ID 删除
	Delete(ctx context.Context, assetID string) error
	// Count 返回资产总数
	Count(ctx context.Context) (int64, error)
}

// OrderRefChecker 查询订单是否仍引用某交易符号。
// 由订单上下文实现，用于删除资产前的引用完整性检查。
type OrderRefChecker interface {
	CountBySymbol(ctx context.Context, symbol string) (int64, error)
}

// EventPublisher 资产领域事件发布接口
type EventPublisher interface {
	PublishAssetSynced(ctx context.Context, asset *Asset) error
}
