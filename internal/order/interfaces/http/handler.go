// Package http 提供订单 REST 接口
package http

import (
	"strconv"

	authdomain "github.com/atlasquant/tradedesk/internal/auth/domain"
	authhttp "github.com/atlasquant/tradedesk/internal/auth/interfaces/http"
	"github.com/atlasquant/tradedesk/internal/order/application"
	"github.com/atlasquant/tradedesk/internal/order/domain"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/atlasquant/tradedesk/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderHandler 订单接口处理器
type OrderHandler struct {
	service *application.OrderService
}

// NewOrderHandler 创建订单接口处理器
func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 注册订单路由。创建/更新对已认证用户开放，删除仅限管理员。
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("", authhttp.Authorize(authdomain.ResourceOrder, authdomain.ActionRead), h.List)
		orders.POST("", authhttp.Authorize(authdomain.ResourceOrder, authdomain.ActionWrite), h.Create)
		orders.GET("/:id", authhttp.Authorize(authdomain.ResourceOrder, authdomain.ActionRead), h.Get)
		orders.PATCH("/:id", authhttp.Authorize(authdomain.ResourceOrder, authdomain.ActionWrite), h.Update)
		orders.DELETE("/:id", authhttp.Authorize(authdomain.ResourceOrder, authdomain.ActionDelete), h.Delete)
	}
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Symbol        string                 `json:"symbol" binding:"required"`
	Quantity      decimal.Decimal        `json:"quantity" binding:"required"`
	Side          string                 `json:"side" binding:"required"`
	Type          string                 `json:"type" binding:"required"`
	TimeInForce   string                 `json:"time_in_force" binding:"required"`
	LimitPrice    *decimal.Decimal       `json:"limit_price"`
	StopPrice     *decimal.Decimal       `json:"stop_price"`
	TrailPrice    *decimal.Decimal       `json:"trail_price"`
	TrailPercent  *decimal.Decimal       `json:"trail_percentage"`
	ExtendedHours bool                   `json:"extended_hours"`
	ClientOrderID string                 `json:"client_order_id"`
	OrderClass    string                 `json:"order_class"`
	TakeProfit    *domain.TakeProfitSpec `json:"take_profit"`
	StopLoss      *domain.StopLossSpec   `json:"stop_loss"`
}

// UpdateOrderRequest 更新订单请求，缺省字段保持原值
type UpdateOrderRequest struct {
	Status        *string                `json:"status"`
	Symbol        *string                `json:"symbol"`
	Quantity      *decimal.Decimal       `json:"quantity"`
	Side          *string                `json:"side"`
	Type          *string                `json:"type"`
	TimeInForce   *string                `json:"time_in_force"`
	LimitPrice    *decimal.Decimal       `json:"limit_price"`
	StopPrice     *decimal.Decimal       `json:"stop_price"`
	TrailPrice    *decimal.Decimal       `json:"trail_price"`
	TrailPercent  *decimal.Decimal       `json:"trail_percentage"`
	ExtendedHours *bool                  `json:"extended_hours"`
	ClientOrderID *string                `json:"client_order_id"`
	OrderClass    *string                `json:"order_class"`
	TakeProfit    *domain.TakeProfitSpec `json:"take_profit"`
	StopLoss      *domain.StopLossSpec   `json:"stop_loss"`
}

// Create 创建订单
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Wrap(err, apperr.KindValidation, "invalid request body"))
		return
	}
	detail, err := h.service.Create(c.Request.Context(), application.CreateOrderCommand{
		Symbol:        req.Symbol,
		Quantity:      req.Quantity,
		Side:          req.Side,
		Type:          req.Type,
		TimeInForce:   req.TimeInForce,
		LimitPrice:    req.LimitPrice,
		StopPrice:     req.StopPrice,
		TrailPrice:    req.TrailPrice,
		TrailPercent:  req.TrailPercent,
		ExtendedHours: req.ExtendedHours,
		ClientOrderID: req.ClientOrderID,
		OrderClass:    req.OrderClass,
		TakeProfit:    req.TakeProfit,
		StopLoss:      req.StopLoss,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List 查询订单列表
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, orders)
}

// Get 查询单个订单
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, order)
}

// Update 部分更新订单
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Wrap(err, apperr.KindValidation, "invalid request body"))
		return
	}
	detail, err := h.service.Update(c.Request.Context(), id, application.UpdateOrderCommand{
		Status:        req.Status,
		Symbol:        req.Symbol,
		Quantity:      req.Quantity,
		Side:          req.Side,
		Type:          req.Type,
		TimeInForce:   req.TimeInForce,
		LimitPrice:    req.LimitPrice,
		StopPrice:     req.StopPrice,
		TrailPrice:    req.TrailPrice,
		TrailPercent:  req.TrailPercent,
		ExtendedHours: req.ExtendedHours,
		ClientOrderID: req.ClientOrderID,
		OrderClass:    req.OrderClass,
		TakeProfit:    req.TakeProfit,
		StopLoss:      req.StopLoss,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// Delete 删除订单
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, apperr.New(apperr.KindValidation, "order id must be a positive integer").WithField("id", "malformed"))
		return 0, false
	}
	return uint(id), true
}
