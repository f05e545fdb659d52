package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalAuthMiddleware 内部接口认证中间件，token 为空时拒绝所有请求
func InternalAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取请求头中的认证信息
		authToken := c.GetHeader("X-Internal-Auth")

		if token == "" || subtle.ConstantTimeCompare([]byte(authToken), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden",
			})
			return
		}

		c.Next()
	}
}
