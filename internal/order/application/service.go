// Package application 实现订单用例编排
package application

import (
	"context"

	assetdomain "github.com/atlasquant/tradedesk/internal/asset/domain"
	"github.com/atlasquant/tradedesk/internal/order/domain"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"github.com/atlasquant/tradedesk/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderCommand 创建订单命令
type CreateOrderCommand struct {
	Symbol        string
	Quantity      decimal.Decimal
	Side          string
	Type          string
	TimeInForce   string
	LimitPrice    *decimal.Decimal
	StopPrice     *decimal.Decimal
	TrailPrice    *decimal.Decimal
	TrailPercent  *decimal.Decimal
	ExtendedHours bool
	ClientOrderID string
	OrderClass    string
	TakeProfit    *domain.TakeProfitSpec
	StopLoss      *domain.StopLossSpec
}

// UpdateOrderCommand 更新订单命令，nil 字段保持原值
type UpdateOrderCommand struct {
	Status        *string
	Symbol        *string
	Quantity      *decimal.Decimal
	Side          *string
	Type          *string
	TimeInForce   *string
	LimitPrice    *decimal.Decimal
	StopPrice     *decimal.Decimal
	TrailPrice    *decimal.Decimal
	TrailPercent  *decimal.Decimal
	ExtendedHours *bool
	ClientOrderID *string
	OrderClass    *string
	TakeProfit    *domain.TakeProfitSpec
	StopLoss      *domain.StopLossSpec
}

// OrderService 订单应用服务
type OrderService struct {
	orders  domain.OrderRepository
	assets  assetdomain.AssetRepository
	events  domain.EventPublisher
	metrics *metrics.Metrics
}

// NewOrderService 创建订单应用服务。events 与 metrics 允许为 nil。
func NewOrderService(orders domain.OrderRepository, assets assetdomain.AssetRepository, events domain.EventPublisher, m *metrics.Metrics) *OrderService {
	return &OrderService{orders: orders, assets: assets, events: events, metrics: m}
}

// Create 创建订单。symbol 必须解析到已登记的资产，
// client_order_id 缺省时生成新 UUID，重复时报冲突。
func (s *OrderService) Create(ctx context.Context, cmd CreateOrderCommand) (*OrderDetail, error) {
	if cmd.Symbol == "" {
		return nil, apperr.New(apperr.KindValidation, "symbol is required").WithField("symbol", "required")
	}
	if err := s.resolveSymbol(ctx, cmd.Symbol); err != nil {
		return nil, err
	}

	clientOrderID := cmd.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}
	existing, err := s.orders.GetByClientOrderID(ctx, clientOrderID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnknown, "check client order id")
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.KindConflict, "order with client_order_id %q already exists", clientOrderID).
			WithField("client_order_id", "already in use")
	}

	order := &domain.Order{
		Status:        domain.StatusOpen,
		Symbol:        cmd.Symbol,
		Quantity:      cmd.Quantity,
		Side:          domain.OrderSide(cmd.Side),
		Type:          domain.OrderType(cmd.Type),
		TimeInForce:   domain.TimeInForce(cmd.TimeInForce),
		LimitPrice:    cmd.LimitPrice,
		StopPrice:     cmd.StopPrice,
		TrailPrice:    cmd.TrailPrice,
		TrailPercent:  cmd.TrailPercent,
		ExtendedHours: cmd.ExtendedHours,
		ClientOrderID: clientOrderID,
		OrderClass:    domain.OrderClass(cmd.OrderClass),
		TakeProfit:    cmd.TakeProfit,
		StopLoss:      cmd.StopLoss,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnknown, "save order")
	}

	if s.metrics != nil {
		s.metrics.OrdersCreatedTotal.Inc()
	}
	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			logger.Warn(ctx, "发布订单创建事件失败", "order_id", order.ID, "error", err)
		}
	}
	return toDetail(order), nil
}

// Get 按主键查询订单
func (s *OrderService) Get(ctx context.Context, id uint) (*OrderSummary, error) {
	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSummary(order), nil
}

// List 返回全部订单
func (s *OrderService) List(ctx context.Context) ([]*OrderSummary, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnknown, "list orders")
	}
	out := make([]*OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, toSummary(o))
	}
	return out, nil
}

// Update 部分更新订单。client_order_id 不可变更。
func (s *OrderService) Update(ctx context.Context, id uint, cmd UpdateOrderCommand) (*OrderDetail, error) {
	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.ClientOrderID != nil && *cmd.ClientOrderID != order.ClientOrderID {
		return nil, apperr.New(apperr.KindValidation, "client_order_id is immutable").
			WithField("client_order_id", "cannot be changed")
	}
	if cmd.Symbol != nil && *cmd.Symbol != order.Symbol {
		if err := s.resolveSymbol(ctx, *cmd.Symbol); err != nil {
			return nil, err
		}
		order.Symbol = *cmd.Symbol
	}
	if cmd.Status != nil {
		order.Status = domain.OrderStatus(*cmd.Status)
	}
	if cmd.Quantity != nil {
		order.Quantity = *cmd.Quantity
	}
	if cmd.Side != nil {
		order.Side = domain.OrderSide(*cmd.Side)
	}
	if cmd.Type != nil {
		order.Type = domain.OrderType(*cmd.Type)
	}
	if cmd.TimeInForce != nil {
		order.TimeInForce = domain.TimeInForce(*cmd.TimeInForce)
	}
	if cmd.LimitPrice != nil {
		order.LimitPrice = cmd.LimitPrice
	}
	if cmd.StopPrice != nil {
		order.StopPrice = cmd.StopPrice
	}
	if cmd.TrailPrice != nil {
		order.TrailPrice = cmd.TrailPrice
	}
	if cmd.TrailPercent != nil {
		order.TrailPercent = cmd.TrailPercent
	}
	if cmd.ExtendedHours != nil {
		order.ExtendedHours = *cmd.ExtendedHours
	}
	if cmd.OrderClass != nil {
		order.OrderClass = domain.OrderClass(*cmd.OrderClass)
		// 降级为 simple/无类别时子单规格随之清空
		if order.OrderClass == domain.ClassSimple || order.OrderClass == "" {
			order.TakeProfit = nil
			order.StopLoss = nil
		}
	}
	if cmd.TakeProfit != nil {
		order.TakeProfit = cmd.TakeProfit
	}
	if cmd.StopLoss != nil {
		order.StopLoss = cmd.StopLoss
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnknown, "save order")
	}
	return toDetail(order), nil
}

// Delete 删除订单
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return apperr.Wrap(err, apperr.KindUnknown, "delete order")
	}
	return nil
}

func (s *OrderService) get(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnknown, "get order")
	}
	if order == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "order %d not found", id)
	}
	return order, nil
}

// resolveSymbol 确认交易符号指向已登记的资产
func (s *OrderService) resolveSymbol(ctx context.Context, symbol string) error {
	asset, err := s.assets.GetBySymbol(ctx, symbol)
	if err != nil {
		return apperr.Wrap(err, apperr.KindUnknown, "resolve symbol")
	}
	if asset == nil {
		return apperr.Newf(apperr.KindValidation, "symbol %q does not match a registered asset", symbol).
			WithField("symbol", "unknown asset symbol")
	}
	return nil
}
