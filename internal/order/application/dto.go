package application

import (
	"time"

	"github.com/atlasquant/tradedesk/internal/order/domain"
	"github.com/shopspring/decimal"
)

// OrderSummary 列表/详情查询使用的扁平读模型
type OrderSummary struct {
	ID            uint             `json:"id"`
	Status        string           `json:"status"`
	Symbol        string           `json:"symbol"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Side          string           `json:"side"`
	Type          string           `json:"type"`
	TimeInForce   string           `json:"time_in_force"`
	LimitPrice    *decimal.Decimal `json:"limit_price,omitempty"`
	StopPrice     *decimal.Decimal `json:"stop_price,omitempty"`
	TrailPrice    *decimal.Decimal `json:"trail_price,omitempty"`
	TrailPercent  *decimal.Decimal `json:"trail_percentage,omitempty"`
	ExtendedHours bool             `json:"extended_hours"`
	ClientOrderID string           `json:"client_order_id"`
	OrderClass    string           `json:"order_class,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// OrderDetail 创建/更新返回的完整读模型，带止盈止损子订单
type OrderDetail struct {
	OrderSummary
	TakeProfit *domain.TakeProfitSpec `json:"take_profit,omitempty"`
	StopLoss   *domain.StopLossSpec   `json:"stop_loss,omitempty"`
}

func toSummary(o *domain.Order) *OrderSummary {
	return &OrderSummary{
		ID:            o.ID,
		Status:        string(o.Status),
		Symbol:        o.Symbol,
		Quantity:      o.Quantity,
		Side:          string(o.Side),
		Type:          string(o.Type),
		TimeInForce:   string(o.TimeInForce),
		LimitPrice:    o.LimitPrice,
		StopPrice:     o.StopPrice,
		TrailPrice:    o.TrailPrice,
		TrailPercent:  o.TrailPercent,
		ExtendedHours: o.ExtendedHours,
		ClientOrderID: o.ClientOrderID,
		OrderClass:    string(o.OrderClass),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toDetail(o *domain.Order) *OrderDetail {
	return &OrderDetail{
		OrderSummary: *toSummary(o),
		TakeProfit:   o.TakeProfit,
		StopLoss:     o.StopLoss,
	}
}
