// Package http 负责处理认证相关的 HTTP 请求
package http

import (
	"github.com/atlasquant/tradedesk/internal/auth/application"
	"github.com/atlasquant/tradedesk/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuthHandler HTTP 处理器
type AuthHandler struct {
	app *application.AuthService
}

// NewAuthHandler 创建 HTTP 处理器实例
func NewAuthHandler(app *application.AuthService) *AuthHandler {
	return &AuthHandler{app: app}
}

// RegisterRoutes 注册路由（无需认证）
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册用户
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	user, err := h.app.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录并签发令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, 400, err.Error())
		return
	}

	result, err := h.app.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
