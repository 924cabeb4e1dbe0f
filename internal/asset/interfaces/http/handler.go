// Package http 负责处理资产相关的 HTTP 请求
package http

import (
	"github.com/atlasquant/tradedesk/internal/asset/application"
	authdomain "github.com/atlasquant/tradedesk/internal/auth/domain"
	authhttp "github.com/atlasquant/tradedesk/internal/auth/interfaces/http"
	"github.com/atlasquant/tradedesk/pkg/response"
	"github.com/gin-gonic/gin"
)

// AssetHandler HTTP 处理器
type AssetHandler struct {
	app *application.AssetService
}

// NewAssetHandler 创建 HTTP 处理器实例
func NewAssetHandler(app *application.AssetService) *AssetHandler {
	return &AssetHandler{app: app}
}

// RegisterRoutes 注册路由，每条路由先经过策略判定
func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/assets")
	{
		api.GET("", authhttp.Authorize(authdomain.ResourceAsset, authdomain.ActionRead), h.List)
		api.GET("/:id", authhttp.Authorize(authdomain.ResourceAsset, authdomain.ActionRead), h.Get)
		api.POST("", authhttp.Authorize(authdomain.ResourceAsset, authdomain.ActionWrite), h.Create)
		api.PATCH("/:id", authhttp.Authorize(authdomain.ResourceAsset, authdomain.ActionWrite), h.Update)
		api.DELETE("/:id", authhttp.Authorize(authdomain.ResourceAsset, authdomain.ActionDelete), h.Delete)
	}
}

// CreateAssetRequest 创建资产请求
type CreateAssetRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name" binding:"required"`
	Symbol       string `json:"symbol" binding:"required"`
	AssetClass   string `json:"asset_class" binding:"required"`
	Exchange     string `json:"exchange" binding:"required"`
	Status       string `json:"status"`
	Tradable     bool   `json:"tradable"`
	Marginable   bool   `json:"marginable"`
	Shortable    bool   `json:"shortable"`
	EasyToBorrow bool   `json:"easy_to_borrow"`
}

// UpdateAssetRequest 部分更新请求
type UpdateAssetRequest struct {
	Name         *string `json:"name"`
	Symbol       *string `json:"symbol"`
	AssetClass   *string `json:"asset_class"`
	Exchange     *string `json:"exchange"`
	Status       *string `json:"status"`
	Tradable     *bool   `json:"tradable"`
	Marginable   *bool   `json:"marginable"`
	Shortable    *bool   `json:"shortable"`
	EasyToBorrow *bool   `json:"easy_to_borrow"`
}

// List 列出资产
func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.app.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, assets)
}

// Get 获取资产
func (h *AssetHandler) Get(c *gin.Context) {
	asset, err := h.app.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, asset)
}

// Create 创建资产
func (h *AssetHandler) Create(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	asset, err := h.app.Create(c.Request.Context(), application.CreateAssetCommand{
		AssetID:      req.ID,
		Name:         req.Name,
		Symbol:       req.Symbol,
		AssetClass:   req.AssetClass,
		Exchange:     req.Exchange,
		Status:       req.Status,
		Tradable:     req.Tradable,
		Marginable:   req.Marginable,
		Shortable:    req.Shortable,
		EasyToBorrow: req.EasyToBorrow,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, asset)
}

// Update 部分更新资产
func (h *AssetHandler) Update(c *gin.Context) {
	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	asset, err := h.app.Update(c.Request.Context(), c.Param("id"), application.UpdateAssetCommand{
		Name:         req.Name,
		Symbol:       req.Symbol,
		AssetClass:   req.AssetClass,
		Exchange:     req.Exchange,
		Status:       req.Status,
		Tradable:     req.Tradable,
		Marginable:   req.Marginable,
		Shortable:    req.Shortable,
		EasyToBorrow: req.EasyToBorrow,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, asset)
}

// Delete 删除资产，被订单引用时返回 409
func (h *AssetHandler) Delete(c *gin.Context) {
	if err := h.app.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
