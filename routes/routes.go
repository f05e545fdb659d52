package routes

import (
	"AlterMoodGo/controllers"
	"AlterMoodGo/middleware"
	"AlterMoodGo/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps 注册路由需要的服务
type Deps struct {
	Emotions          *services.EmotionService
	Analytics         *services.AnalyticsService
	Digest            *services.DigestScheduler
	RateLimiter       *middleware.RateLimiter
	InternalAuthToken string
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	emotionController := controllers.NewEmotionController(deps.Emotions)
	syncController := controllers.NewSyncController(deps.Emotions)
	analyticsController := controllers.NewAnalyticsController(deps.Analytics)

	// 需要认证的路由
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware()) // 应用认证中间件
	if deps.RateLimiter != nil {
		private.Use(deps.RateLimiter.Middleware())
	}
	{
		private.GET("/emotions/vocabulary", emotionController.GetVocabulary)
		private.GET("/emotions/recent", emotionController.GetSystemRecent)

		alter := private.Group("/alters/:alterId")
		alter.POST("/emotions", emotionController.AddEmotion)
		alter.GET("/emotions", emotionController.GetHistory)
		alter.GET("/emotions/latest", emotionController.GetLatest)

		alter.GET("/analytics", analyticsController.GetReport)
		alter.GET("/analytics/trend", analyticsController.GetTrend)
		alter.GET("/analytics/distribution", analyticsController.GetDistribution)
		alter.GET("/analytics/mood", analyticsController.GetMood)
		alter.GET("/analytics/patterns", analyticsController.GetPatterns)
		alter.GET("/analytics/summary", analyticsController.GetSummary)
		alter.GET("/analytics/export", analyticsController.ExportReport)

		private.POST("/sync/emotions", syncController.SyncEmotions)
		private.GET("/sync/updates", syncController.GetUpdates)
	}

	// 内部路由组（仅限服务器内部调用）
	if deps.Digest != nil {
		digestController := controllers.NewDigestController(deps.Digest)
		internal := r.Group("/internal")
		internal.Use(middleware.InternalAuthMiddleware(deps.InternalAuthToken))
		if deps.RateLimiter != nil {
			// 内部调用没有系统 ID，按来源 IP 限流
			internal.Use(deps.RateLimiter.Middleware())
		}
		{
			internal.POST("/digest/run", digestController.RunDigest)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 测试路由
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
