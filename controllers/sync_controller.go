package controllers

import (
	"AlterMoodGo/models"
	"AlterMoodGo/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type SyncController struct {
	service *services.EmotionService
}

func NewSyncController(service *services.EmotionService) *SyncController {
	return &SyncController{service: service}
}

// SyncEmotions 导入客户端离线记录，已存在的记录跳过
func (sc *SyncController) SyncEmotions(c *gin.Context) {
	uid, ok := systemID(c)
	if !ok {
		return
	}

	var emotions []models.SyncEmotionsRequest
	if err := c.ShouldBindJSON(&emotions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := sc.service.Import(c.Request.Context(), uid, emotions)
	if err != nil {
		respondError(c, err, "情绪记录同步失败")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUpdates 获取自上次同步以来写入的记录
func (sc *SyncController) GetUpdates(c *gin.Context) {
	uid, ok := systemID(c)
	if !ok {
		return
	}

	// 获取上次同步时间，未提供时从最早可回溯的时间开始
	var lastSyncDate time.Time
	if s := c.Query("lastSyncDate"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的时间格式"})
			return
		}
		lastSyncDate = t.UTC()
	}

	records, syncedAt, err := sc.service.Updates(c.Request.Context(), uid, lastSyncDate)
	if err != nil {
		respondError(c, err, "获取情绪记录更新失败")
		return
	}

	// lastSyncDate 使用服务端时间，避免客户端时钟偏差漏掉记录
	c.JSON(http.StatusOK, gin.H{
		"emotions":     toResponses(records),
		"lastSyncDate": syncedAt.Format(time.RFC3339),
	})
}
