// Package http 负责处理参考数据相关的 HTTP 请求
package http

import (
	authdomain "github.com/atlasquant/tradedesk/internal/auth/domain"
	authhttp "github.com/atlasquant/tradedesk/internal/auth/interfaces/http"
	"github.com/atlasquant/tradedesk/internal/refdata/application"
	"github.com/atlasquant/tradedesk/pkg/response"
	"github.com/gin-gonic/gin"
)

// ReferenceDataHandler HTTP 处理器
type ReferenceDataHandler struct {
	app *application.ReferenceDataService
}

// NewReferenceDataHandler 创建 HTTP 处理器实例
func NewReferenceDataHandler(app *application.ReferenceDataService) *ReferenceDataHandler {
	return &ReferenceDataHandler{app: app}
}

// RegisterRoutes 注册路由，每条路由先经过策略判定
func (h *ReferenceDataHandler) RegisterRoutes(router *gin.RouterGroup) {
	exchanges := router.Group("/exchanges")
	{
		exchanges.GET("", authhttp.Authorize(authdomain.ResourceExchange, authdomain.ActionRead), h.ListExchanges)
		exchanges.GET("/:name", authhttp.Authorize(authdomain.ResourceExchange, authdomain.ActionRead), h.GetExchange)
		exchanges.POST("", authhttp.Authorize(authdomain.ResourceExchange, authdomain.ActionWrite), h.CreateExchange)
		exchanges.PATCH("/:name", authhttp.Authorize(authdomain.ResourceExchange, authdomain.ActionWrite), h.UpdateExchange)
		exchanges.DELETE("/:name", authhttp.Authorize(authdomain.ResourceExchange, authdomain.ActionDelete), h.DeleteExchange)
	}

	assetClasses := router.Group("/asset-classes")
	{
		assetClasses.GET("", authhttp.Authorize(authdomain.ResourceAssetClass, authdomain.ActionRead), h.ListAssetClasses)
		assetClasses.GET("/:name", authhttp.Authorize(authdomain.ResourceAssetClass, authdomain.ActionRead), h.GetAssetClass)
		assetClasses.POST("", authhttp.Authorize(authdomain.ResourceAssetClass, authdomain.ActionWrite), h.CreateAssetClass)
		assetClasses.PATCH("/:name", authhttp.Authorize(authdomain.ResourceAssetClass, authdomain.ActionWrite), h.UpdateAssetClass)
		assetClasses.DELETE("/:name", authhttp.Authorize(authdomain.ResourceAssetClass, authdomain.ActionDelete), h.DeleteAssetClass)
	}
}

// CreateRequest 创建请求
type CreateRequest struct {
	Name     string `json:"name" binding:"required"`
	AltName  string `json:"alt_name"`
	IsActive *bool  `json:"is_active"`
}

// UpdateRequest 部分更新请求
type UpdateRequest struct {
	Name     *string `json:"name"`
	AltName  *string `json:"alt_name"`
	IsActive *bool   `json:"is_active"`
}

// ListExchanges 列出交易所
func (h *ReferenceDataHandler) ListExchanges(c *gin.Context) {
	exchanges, err := h.app.ListExchanges(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, exchanges)
}

// GetExchange 获取交易所
func (h *ReferenceDataHandler) GetExchange(c *gin.Context) {
	exchange, err := h.app.GetExchange(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, exchange)
}

// CreateExchange 创建交易所
func (h *ReferenceDataHandler) CreateExchange(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	exchange, err := h.app.CreateExchange(c.Request.Context(), application.CreateCommand{
		Name:     req.Name,
		AltName:  req.AltName,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exchange)
}

// UpdateExchange 部分更新交易所
func (h *ReferenceDataHandler) UpdateExchange(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	exchange, err := h.app.UpdateExchange(c.Request.Context(), c.Param("name"), application.UpdateCommand{
		Name:     req.Name,
		AltName:  req.AltName,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, exchange)
}

// DeleteExchange 删除交易所
func (h *ReferenceDataHandler) DeleteExchange(c *gin.Context) {
	if err := h.app.DeleteExchange(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAssetClasses 列出资产类别
func (h *ReferenceDataHandler) ListAssetClasses(c *gin.Context) {
	assetClasses, err := h.app.ListAssetClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, assetClasses)
}

// GetAssetClass 获取资产类别
func (h *ReferenceDataHandler) GetAssetClass(c *gin.Context) {
	assetClass, err := h.app.GetAssetClass(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, assetClass)
}

// CreateAssetClass 创建资产类别
func (h *ReferenceDataHandler) CreateAssetClass(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	assetClass, err := h.app.CreateAssetClass(c.Request.Context(), application.CreateCommand{
		Name:     req.Name,
		AltName:  req.AltName,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assetClass)
}

// UpdateAssetClass 部分更新资产类别
func (h *ReferenceDataHandler) UpdateAssetClass(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	assetClass, err := h.app.UpdateAssetClass(c.Request.Context(), c.Param("name"), application.UpdateCommand{
		Name:     req.Name,
		AltName:  req.AltName,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, assetClass)
}

// DeleteAssetClass 删除资产类别
func (h *ReferenceDataHandler) DeleteAssetClass(c *gin.Context) {
	if err := h.app.DeleteAssetClass(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
