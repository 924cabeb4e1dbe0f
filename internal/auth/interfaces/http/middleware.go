package http

import (
	"strings"

	"github.com/atlasquant/tradedesk/internal/auth/application"
	"github.com/atlasquant/tradedesk/internal/auth/domain"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/atlasquant/tradedesk/pkg/response"
	"github.com/gin-gonic/gin"
)

// gin context 中已认证用户信息的键
const (
	ContextUserIDKey = "auth_user_id"
	ContextRoleKey   = "auth_role"
	ContextEmailKey  = "auth_email"
)

// Authenticate 解析 Bearer 令牌并将用户信息写入 context，缺失或非法时返回 401
func Authenticate(tokens *application.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, apperr.New(apperr.KindUnauthenticated, "missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, apperr.New(apperr.KindUnauthenticated, "malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextEmailKey, claims.Subject)
		c.Next()
	}
}

// Authorize 根据策略表判定当前角色是否允许执行 (资源, 操作)，不允许时返回 403
func Authorize(resource domain.Resource, action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRoleKey)
		if !ok {
			response.Error(c, apperr.New(apperr.KindUnauthenticated, "not authenticated"))
			c.Abort()
			return
		}

		if !domain.Allowed(role.(domain.UserRole), resource, action) {
			response.Error(c, apperr.Newf(apperr.KindForbidden, "%s on %s requires administrator role", action, resource))
			c.Abort()
			return
		}
		c.Next()
	}
}
