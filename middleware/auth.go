package middleware

import (
	"AlterMoodGo/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextUID gin.Context 中保存系统 ID 的键
const ContextUID = "uid"

// bearerToken 优先读取 Authorization，GET 请求允许 access_token 查询参数，用于浏览器直接下载导出文件
func bearerToken(c *gin.Context) string {
	if token := c.GetHeader("Authorization"); token != "" {
		return token
	}
	if c.Request.Method == http.MethodGet {
		return c.Query("access_token")
	}
	return ""
}

// AuthMiddleware 校验 JWT，并把系统 ID 写入 uid
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未提供认证信息"})
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的认证信息"})
			return
		}

		c.Set(ContextUID, claims.UserID)
		c.Next()
	}
}
