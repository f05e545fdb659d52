package main

import (
	"AlterMoodGo/config"
	"AlterMoodGo/middleware"
	"AlterMoodGo/routes"
	"AlterMoodGo/services"
	"AlterMoodGo/utils"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// 加载配置
	conf, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	// 初始化日志
	if err := config.InitLogger(conf.LogDir); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer config.Logger.Sync()

	utils.SetJWTSecret(conf.JWTSecret)

	// 分析引擎
	engine, err := conf.NewEngine()
	if err != nil {
		config.Logger.Fatalw("无法创建分析引擎", "error", err)
	}

	// 存储
	var store services.EmotionStore
	switch conf.StoreDriver {
	case "mongo":
		if err := config.InitMongo(conf); err != nil {
			config.Logger.Fatalw("无法初始化MongoDB", "error", err)
		}
		mongoStore := services.NewMongoEmotionStore(config.MongoDB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			config.Logger.Warnw("创建索引失败", "error", err)
		}
		cancel()
		store = mongoStore
	default:
		if err := config.InitDB(conf); err != nil {
			config.Logger.Fatalw("无法初始化数据库", "error", err)
		}
		store = services.NewGormEmotionStore(config.DB)
	}

	// 缓存
	var cache services.ReportCache
	switch conf.CacheDriver {
	case "memory":
		cache = services.NewMemoryReportCache(conf.AnalyticsCacheTTL)
	case "none":
	default:
		if err := config.InitRedis(conf); err != nil {
			config.Logger.Fatalw("无法初始化Redis", "error", err)
		}
		cache = services.NewRedisReportCache(config.RedisClient)
	}

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)

	analyticsService := services.NewAnalyticsService(store, engine, services.AnalyticsOptions{
		Cache:             cache,
		CacheTTL:          conf.AnalyticsCacheTTL,
		Metrics:           metrics,
		TrendMaxDays:      conf.TrendMaxDays,
		PatternWindowDays: conf.PatternWindowDays,
	})
	emotionService := services.NewEmotionService(store, analyticsService, metrics)

	// 定时预热
	var digest *services.DigestScheduler
	if conf.DigestInterval > 0 {
		digest, err = services.NewDigestScheduler(store, analyticsService, metrics, conf.DigestInterval)
		if err != nil {
			config.Logger.Fatalw("无法创建定时任务", "error", err)
		}
		if err := digest.Start(); err != nil {
			config.Logger.Fatalw("无法启动定时任务", "error", err)
		}
	}

	// 设置Gin模式
	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	middleware.SetupMiddleware(r)

	routes.RegisterRoutes(r, routes.Deps{
		Emotions:          emotionService,
		Analytics:         analyticsService,
		Digest:            digest,
		RateLimiter:       middleware.NewRateLimiter(conf.RateLimitRPS, conf.RateLimitBurst),
		InternalAuthToken: conf.InternalAuthToken,
	})

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:              ":" + conf.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 在goroutine中启动服务器
	go func() {
		config.Logger.Infow("启动服务器", "port", conf.ServerPort, "store", conf.StoreDriver, "cache", conf.CacheDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Fatalw("服务器启动失败", "error", err)
		}
	}()

	// 等待中断信号以实现优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	config.Logger.Info("正在关闭服务器...")

	// 创建超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		config.Logger.Errorw("服务器关闭失败", "error", err)
	}

	if digest != nil {
		if err := digest.Shutdown(); err != nil {
			config.Logger.Errorw("定时任务关闭失败", "error", err)
		}
	}
	if err := config.CloseMongo(ctx); err != nil {
		config.Logger.Errorw("MongoDB关闭失败", "error", err)
	}
	if config.RedisClient != nil {
		config.RedisClient.Close()
	}

	config.Logger.Info("服务器已关闭")
}
