package controllers

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/export"
	"AlterMoodGo/services"
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	service *services.AnalyticsService
}

func NewAnalyticsController(service *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{service: service}
}

// report 解析公共参数并获取报表，失败时已写入响应
func (ac *AnalyticsController) report(c *gin.Context) (*analytics.Report, bool) {
	uid, ok := systemID(c)
	if !ok {
		return nil, false
	}
	period, ok := parsePeriod(c)
	if !ok {
		return nil, false
	}

	rep, err := ac.service.Report(c.Request.Context(), uid, c.Param("alterId"), period)
	if err != nil {
		respondError(c, err, "生成分析报表失败")
		return nil, false
	}
	return rep, true
}

// GetReport 历史页面需要的全部分析结果
func (ac *AnalyticsController) GetReport(c *gin.Context) {
	rep, ok := ac.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (ac *AnalyticsController) GetTrend(c *gin.Context) {
	rep, ok := ac.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": rep.Period, "trend": rep.Trend})
}

func (ac *AnalyticsController) GetDistribution(c *gin.Context) {
	rep, ok := ac.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": rep.Period, "distribution": rep.Distribution})
}

func (ac *AnalyticsController) GetMood(c *gin.Context) {
	rep, ok := ac.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep.Mood)
}

// GetPatterns 洞察只看模式识别窗口，忽略 period
func (ac *AnalyticsController) GetPatterns(c *gin.Context) {
	uid, ok := systemID(c)
	if !ok {
		return
	}

	insights, err := ac.service.Patterns(c.Request.Context(), uid, c.Param("alterId"))
	if err != nil {
		respondError(c, err, "生成洞察失败")
		return
	}

	messages := make([]string, 0, len(insights))
	for _, in := range insights {
		messages = append(messages, in.String())
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights, "messages": messages})
}

func (ac *AnalyticsController) GetSummary(c *gin.Context) {
	rep, ok := ac.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep.Summary)
}

// ExportReport 以 xlsx 下载报表
func (ac *AnalyticsController) ExportReport(c *gin.Context) {
	rep, ok := ac.report(c)
	if !ok {
		return
	}

	alterID := c.Param("alterId")
	var buf bytes.Buffer
	if err := export.WriteReport(&buf, alterID, *rep); err != nil {
		respondError(c, err, "导出报表失败")
		return
	}

	day := ac.service.Windows(rep.Period).Current.End.Format(analytics.DateLayout)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(alterID, rep.Period, day)))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
