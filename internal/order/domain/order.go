// Package domain 包含订单台账的领域模型
package domain

import (
	"context"

	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	StatusOpen   OrderStatus = "open"
	StatusClosed OrderStatus = "closed"
)

// OrderSide 买卖方向
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType 订单类型
type OrderType string

const (
	TypeMarket       OrderType = "market"
	TypeLimit        OrderType = "limit"
	TypeStop         OrderType = "stop"
	TypeStopLimit    OrderType = "stop_limit"
	TypeTrailingStop OrderType = "trailing_stop"
)

// TimeInForce 订单有效期策略
type TimeInForce string

const (
	TIFDay TimeInForce = "day"
	TIFGTC TimeInForce = "gtc" // good till cancelled
	TIFOPG TimeInForce = "opg" // at market open
	TIFCLS TimeInForce = "cls" // at market close
	TIFIOC TimeInForce = "ioc" // immediate or cancel
	TIFFOK TimeInForce = "fok" // fill or kill
)

// OrderClass 复合订单类别
type OrderClass string

const (
	ClassSimple  OrderClass = "simple"
	ClassBracket OrderClass = "bracket"
	ClassOCO     OrderClass = "oco" // one cancels other
	ClassOTO     OrderClass = "oto" // one triggers other
)

// TakeProfitSpec 止盈子订单
type TakeProfitSpec struct {
	LimitPrice *decimal.Decimal `json:"limit_price"`
}

// StopLossSpec 止损子订单
type StopLossSpec struct {
	StopPrice  *decimal.Decimal `json:"stop_price"`
	LimitPrice *decimal.Decimal `json:"limit_price,omitempty"`
}

// Order 订单实体。symbol 以交易符号引用资产，写入时必须可解析。
// client_order_id 为全局唯一的幂等键，创建后不可变更。
type Order struct {
	gorm.Model
	Status        OrderStatus
	Symbol        string
	Quantity      decimal.Decimal
	Side          OrderSide
	Type          OrderType
	TimeInForce   TimeInForce
	LimitPrice    *decimal.Decimal
	StopPrice     *decimal.Decimal
	TrailPrice    *decimal.Decimal
	TrailPercent  *decimal.Decimal
	ExtendedHours bool
	ClientOrderID string
	OrderClass    OrderClass
	TakeProfit    *TakeProfitSpec
	StopLoss      *StopLossSpec
}

// Validate 校验订单字段的内部一致性
func (o *Order) Validate() error {
	if !o.Quantity.IsPositive() {
		return apperr.New(apperr.KindValidation, "quantity must be positive").WithField("quantity", "must be greater than zero")
	}
	if o.Status != StatusOpen && o.Status != StatusClosed {
		return apperr.Newf(apperr.KindValidation, "invalid status %q", o.Status).WithField("status", "must be open or closed")
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return apperr.Newf(apperr.KindValidation, "invalid side %q", o.Side).WithField("side", "must be buy or sell")
	}
	if err := o.validateType(); err != nil {
		return err
	}
	if err := o.validateTimeInForce(); err != nil {
		return err
	}
	if err := o.validateOrderClass(); err != nil {
		return err
	}
	if _, err := uuid.Parse(o.ClientOrderID); err != nil {
		return apperr.New(apperr.KindValidation, "client_order_id must be a UUID").WithField("client_order_id", "malformed UUID")
	}
	return nil
}

// validateType 校验订单类型与价格字段的组合
func (o *Order) validateType() error {
	switch o.Type {
	case TypeMarket, TypeLimit, TypeStop, TypeStopLimit, TypeTrailingStop:
	default:
		return apperr.Newf(apperr.KindValidation, "invalid type %q", o.Type).WithField("type", "unknown order type")
	}

	if o.Type == TypeLimit || o.Type == TypeStopLimit {
		if o.LimitPrice == nil {
			return apperr.Newf(apperr.KindValidation, "%s orders require limit_price", o.Type).WithField("limit_price", "required")
		}
	}
	if o.Type == TypeStop || o.Type == TypeStopLimit {
		if o.StopPrice == nil {
			return apperr.Newf(apperr.KindValidation, "%s orders require stop_price", o.Type).WithField("stop_price", "required")
		}
	}

	if o.Type == TypeTrailingStop {
		// trail_price 与 trail_percentage 互斥且必选其一
		if (o.TrailPrice == nil) == (o.TrailPercent == nil) {
			return apperr.New(apperr.KindValidation, "trailing_stop orders require exactly one of trail_price and trail_percentage").
				WithField("trail_price", "exactly one of trail_price/trail_percentage")
		}
	} else if o.TrailPrice != nil || o.TrailPercent != nil {
		return apperr.Newf(apperr.KindValidation, "trail fields are not allowed on %s orders", o.Type).
			WithField("trail_price", "only valid for trailing_stop orders")
	}

	for field, price := range map[string]*decimal.Decimal{
		"limit_price":      o.LimitPrice,
		"stop_price":       o.StopPrice,
		"trail_price":      o.TrailPrice,
		"trail_percentage": o.TrailPercent,
	} {
		if price != nil && !price.IsPositive() {
			return apperr.Newf(apperr.KindValidation, "%s must be positive", field).WithField(field, "must be greater than zero")
		}
	}
	return nil
}

func (o *Order) validateTimeInForce() error {
	switch o.TimeInForce {
	case TIFDay, TIFGTC, TIFOPG, TIFCLS, TIFIOC, TIFFOK:
		return nil
	default:
		return apperr.Newf(apperr.KindValidation, "invalid time_in_force %q", o.TimeInForce).WithField("time_in_force", "unknown time in force")
	}
}

// validateOrderClass 校验复合订单类别与止盈/止损子订单的组合。
// bracket/oco/oto 至少携带止盈或止损之一；simple 或未设类别时不允许携带。
func (o *Order) validateOrderClass() error {
	switch o.OrderClass {
	case "", ClassSimple:
		if o.TakeProfit != nil || o.StopLoss != nil {
			return apperr.New(apperr.KindValidation, "take_profit/stop_loss require a bracket, oco or oto order class").
				WithField("order_class", "must be bracket, oco or oto")
		}
		return nil
	case ClassBracket, ClassOCO, ClassOTO:
		if o.TakeProfit == nil && o.StopLoss == nil {
			return apperr.Newf(apperr.KindValidation, "%s orders require at least one of take_profit and stop_loss", o.OrderClass).
				WithField("order_class", "missing take_profit/stop_loss")
		}
	default:
		return apperr.Newf(apperr.KindValidation, "invalid order_class %q", o.OrderClass).WithField("order_class", "unknown order class")
	}

	if o.TakeProfit != nil {
		if o.TakeProfit.LimitPrice == nil || !o.TakeProfit.LimitPrice.IsPositive() {
			return apperr.New(apperr.KindValidation, "take_profit requires a positive limit_price").
				WithField("take_profit.limit_price", "required")
		}
	}
	if o.StopLoss != nil {
		if o.StopLoss.StopPrice == nil || !o.StopLoss.StopPrice.IsPositive() {
			return apperr.New(apperr.KindValidation, "stop_loss requires a positive stop_price").
				WithField("stop_loss.stop_price", "required")
		}
		if o.StopLoss.LimitPrice != nil && !o.StopLoss.LimitPrice.IsPositive() {
			return apperr.New(apperr.KindValidation, "stop_loss limit_price must be positive").
				WithField("stop_loss.limit_price", "must be greater than zero")
		}
	}
	return nil
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// List 返回全部订单
	List(ctx context.Context) ([]*Order, error)
	// GetByID 按主键查询，不存在时返回 nil
	GetByID(ctx context.Context, id uint) (*Order, error)
	// GetByClientOrderID 按幂等键查询，不存在时返回 nil
	GetByClientOrderID(ctx context.Context, clientOrderID string) (*Order, error)
	// Save 插入或更新
	Save(ctx context.Context, order *Order) error
	// CountBySymbol 统计引用某交易符号的订单数
	CountBySymbol(ctx context.Context, symbol string) (int64, error)
	// Delete 按主键删除
	Delete(ctx context.Context, id uint) error
}

// EventPublisher 订单领域事件发布接口
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *Order) error
}
