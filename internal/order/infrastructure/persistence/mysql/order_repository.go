// Package mysql 提供订单仓储的 GORM 实现
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atlasquant/tradedesk/internal/order/domain"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderModel 订单持久化模型。金额列按 decimal(12,5) 建表，
// 止盈/止损子订单序列化为 JSON 文本列。
type OrderModel struct {
	gorm.Model
	Status        string  `gorm:"type:varchar(16);not null;index"`
	Symbol        string  `gorm:"type:varchar(32);not null;index"`
	Quantity      string  `gorm:"type:decimal(12,5);not null"`
	Side          string  `gorm:"type:varchar(8);not null"`
	Type          string  `gorm:"type:varchar(16);not null"`
	TimeInForce   string  `gorm:"type:varchar(8);not null"`
	LimitPrice    *string `gorm:"type:decimal(12,5)"`
	StopPrice     *string `gorm:"type:decimal(12,5)"`
	TrailPrice    *string `gorm:"type:decimal(12,5)"`
	TrailPercent  *string `gorm:"column:trail_percentage;type:decimal(5,2)"`
	ExtendedHours bool    `gorm:"not null"`
	ClientOrderID string  `gorm:"type:varchar(36);uniqueIndex;not null"`
	OrderClass    string  `gorm:"type:varchar(16)"`
	TakeProfit    *string `gorm:"type:json"`
	StopLoss      *string `gorm:"type:json"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

type orderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: db}
}

func (r *orderRepositoryImpl) List(ctx context.Context) ([]*domain.Order, error) {
	var models []*OrderModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		logger.Error(ctx, "查询订单列表失败", "error", err)
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(models))
	for _, m := range models {
		order, err := toDomain(m)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *orderRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "查询订单失败", "order_id", id, "error", err)
		return nil, err
	}
	return toDomain(&model)
}

func (r *orderRepositoryImpl) GetByClientOrderID(ctx context.Context, clientOrderID string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("client_order_id = ?", clientOrderID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "按幂等键查询订单失败", "client_order_id", clientOrderID, "error", err)
		return nil, err
	}
	return toDomain(&model)
}

func (r *orderRepositoryImpl) Save(ctx context.Context, order *domain.Order) error {
	model, err := toModel(order)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		logger.Error(ctx, "保存订单失败", "client_order_id", order.ClientOrderID, "error", err)
		return err
	}
	order.Model = model.Model
	return nil
}

func (r *orderRepositoryImpl) CountBySymbol(ctx context.Context, symbol string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("symbol = ?", symbol).Count(&count).Error; err != nil {
		logger.Error(ctx, "统计符号订单数失败", "symbol", symbol, "error", err)
		return 0, err
	}
	return count, nil
}

func (r *orderRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&OrderModel{}, id).Error; err != nil {
		logger.Error(ctx, "删除订单失败", "order_id", id, "error", err)
		return err
	}
	return nil
}

func toModel(o *domain.Order) (*OrderModel, error) {
	model := &OrderModel{
		Model:         o.Model,
		Status:        string(o.Status),
		Symbol:        o.Symbol,
		Quantity:      o.Quantity.String(),
		Side:          string(o.Side),
		Type:          string(o.Type),
		TimeInForce:   string(o.TimeInForce),
		LimitPrice:    decimalToString(o.LimitPrice),
		StopPrice:     decimalToString(o.StopPrice),
		TrailPrice:    decimalToString(o.TrailPrice),
		TrailPercent:  decimalToString(o.TrailPercent),
		ExtendedHours: o.ExtendedHours,
		ClientOrderID: o.ClientOrderID,
		OrderClass:    string(o.OrderClass),
	}
	if o.TakeProfit != nil {
		raw, err := json.Marshal(o.TakeProfit)
		if err != nil {
			return nil, fmt.Errorf("encode take_profit: %w", err)
		}
		s := string(raw)
		model.TakeProfit = &s
	}
	if o.StopLoss != nil {
		raw, err := json.Marshal(o.StopLoss)
		if err != nil {
			return nil, fmt.Errorf("encode stop_loss: %w", err)
		}
		s := string(raw)
		model.StopLoss = &s
	}
	return model, nil
}

func toDomain(m *OrderModel) (*domain.Order, error) {
	quantity, err := decimal.NewFromString(m.Quantity)
	if err != nil {
		return nil, fmt.Errorf("decode quantity of order %d: %w", m.ID, err)
	}
	order := &domain.Order{
		Model:         m.Model,
		Status:        domain.OrderStatus(m.Status),
		Symbol:        m.Symbol,
		Quantity:      quantity,
		Side:          domain.OrderSide(m.Side),
		Type:          domain.OrderType(m.Type),
		TimeInForce:   domain.TimeInForce(m.TimeInForce),
		ExtendedHours: m.ExtendedHours,
		ClientOrderID: m.ClientOrderID,
		OrderClass:    domain.OrderClass(m.OrderClass),
	}
	if order.LimitPrice, err = stringToDecimal(m.LimitPrice); err != nil {
		return nil, fmt.Errorf("decode limit_price of order %d: %w", m.ID, err)
	}
	if order.StopPrice, err = stringToDecimal(m.StopPrice); err != nil {
		return nil, fmt.Errorf("decode stop_price of order %d: %w", m.ID, err)
	}
	if order.TrailPrice, err = stringToDecimal(m.TrailPrice); err != nil {
		return nil, fmt.Errorf("decode trail_price of order %d: %w", m.ID, err)
	}
	if order.TrailPercent, err = stringToDecimal(m.TrailPercent); err != nil {
		return nil, fmt.Errorf("decode trail_percentage of order %d: %w", m.ID, err)
	}
	if m.TakeProfit != nil {
		var spec domain.TakeProfitSpec
		if err := json.Unmarshal([]byte(*m.TakeProfit), &spec); err != nil {
			return nil, fmt.Errorf("decode take_profit of order %d: %w", m.ID, err)
		}
		order.TakeProfit = &spec
	}
	if m.StopLoss != nil {
		var spec domain.StopLossSpec
		if err := json.Unmarshal([]byte(*m.StopLoss), &spec); err != nil {
			return nil, fmt.Errorf("decode stop_loss of order %d: %w", m.ID, err)
		}
		order.StopLoss = &spec
	}
	return order, nil
}

func decimalToString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func stringToDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
