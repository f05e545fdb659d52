package controllers

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/models"
	"AlterMoodGo/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type EmotionController struct {
	service *services.EmotionService
}

func NewEmotionController(service *services.EmotionService) *EmotionController {
	return &EmotionController{service: service}
}

func toResponses(records []analytics.Record) []models.EmotionResponse {
	out := make([]models.EmotionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, models.NewEmotionResponse(rec))
	}
	return out
}

// AddEmotion 新增一条情绪打卡
func (ec *EmotionController) AddEmotion(c *gin.Context) {
	uid, ok := systemID(c)
	if !ok {
		return
	}

	var req models.CreateEmotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := ec.service.Add(c.Request.Context(), uid, c.Param("alterId"), req)
	if err != nil {
		respondError(c, err, "情绪记录保存失败")
		return
	}

	c.JSON(http.StatusCreated, models.NewEmotionResponse(rec))
}

// GetHistory 查询时间区间内的情绪记录
func (ec *EmotionController) GetHistory(c *gin.Context) {
	uid, ok := systemID(c)
	if !ok {
		return
	}

	var query models.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的时间格式"})
		return
	}
	if err := query.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := ec.service.History(c.Request.Context(), uid, c.Param("alterId"), query.From, query.To)
	if err != nil {
		respondError(c, err, "获取情绪记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"emotions": toResponses(records)})
}

// GetLatest 某个 alter 最近一次打卡
func (ec *EmotionController) GetLatest(c *gin.Context) {
	uid, ok := systemID(c)
	if !ok {
		return
	}

	rec, err := ec.service.Latest(c.Request.Context(), uid, c.Param("alterId"))
	if err != nil {
		respondError(c, err, "获取最近情绪失败")
		return
	}

	c.JSON(http.StatusOK, models.NewEmotionResponse(rec))
}

// GetSystemRecent 系统内每个 alter 的最近一次打卡，按 alterId 索引
func (ec *EmotionController) GetSystemRecent(c *gin.Context) {
	uid, ok := systemID(c)
	if !ok {
		return
	}

	latest, err := ec.service.SystemRecent(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err, "获取最近情绪失败")
		return
	}

	out := make(map[string]models.EmotionResponse, len(latest))
	for alterID, rec := range latest {
		out[alterID] = models.NewEmotionResponse(rec)
	}
	c.JSON(http.StatusOK, gin.H{"emotions": out})
}

// GetVocabulary 返回情绪标签及其效价
func (ec *EmotionController) GetVocabulary(c *gin.Context) {
	vocab := ec.service.Vocabulary()
	tags := vocab.Tags()

	entries := make([]models.VocabularyEntry, 0, len(tags))
	for _, t := range tags {
		entries = append(entries, models.VocabularyEntry{Tag: string(t), Valence: vocab.Valence(t)})
	}
	c.JSON(http.StatusOK, models.VocabularyResponse{Version: vocab.Version(), Tags: entries})
}
