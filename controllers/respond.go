package controllers

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/config"
	"AlterMoodGo/middleware"
	"AlterMoodGo/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// systemID 读取认证中间件写入的系统 ID
func systemID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.ContextUID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return "", false
	}
	return uid, true
}

// parsePeriod 解析 period 查询参数，失败时已写入 400
func parsePeriod(c *gin.Context) (analytics.Period, bool) {
	p, err := analytics.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return p, true
}

// respondError 把服务层错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error, msg string) {
	var recErr *analytics.RecordError
	switch {
	case errors.Is(err, services.ErrInvalidEmotion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
	case errors.As(err, &recErr):
		config.Logger.Errorw("情绪记录数据异常", "id", recErr.ID, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "情绪记录数据异常"})
	default:
		config.Logger.Errorw(msg, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
