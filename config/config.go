package config

import (
	"AlterMoodGo/analytics"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config 存储所有配置信息
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
	LogDir      string `mapstructure:"LOG_DIR"`

	// 存储后端：mysql 或 mongo
	StoreDriver string `mapstructure:"STORE_DRIVER"`

	// 数据库配置
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	// MongoDB配置
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// 缓存：redis 或 memory
	CacheDriver       string        `mapstructure:"CACHE_DRIVER"`
	AnalyticsCacheTTL time.Duration `mapstructure:"ANALYTICS_CACHE_TTL"`

	// Redis配置
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// JWT配置
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	InternalAuthToken string `mapstructure:"INTERNAL_AUTH_TOKEN"`

	// 限流
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// 分析引擎配置
	Timezone          string  `mapstructure:"TIMEZONE"`
	VocabularyFile    string  `mapstructure:"VOCABULARY_FILE"`
	MoodTrendDelta    float64 `mapstructure:"MOOD_TREND_DELTA"`
	DominanceShare    float64 `mapstructure:"DOMINANCE_SHARE"`
	HardDayShare      float64 `mapstructure:"HARD_DAY_SHARE"`
	HardDayMinSamples int     `mapstructure:"HARD_DAY_MIN_SAMPLES"`
	MinPatternRecords int     `mapstructure:"MIN_PATTERN_RECORDS"`
	TrendMaxDays      int     `mapstructure:"TREND_MAX_DAYS"`
	PatternWindowDays int     `mapstructure:"PATTERN_WINDOW_DAYS"`

	// 定时预热缓存的间隔，0 表示关闭
	DigestInterval time.Duration `mapstructure:"DIGEST_INTERVAL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("STORE_DRIVER", "mysql")
	v.SetDefault("MONGO_DATABASE", "altermood")
	v.SetDefault("CACHE_DRIVER", "redis")
	v.SetDefault("ANALYTICS_CACHE_TTL", 5*time.Minute)
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("MOOD_TREND_DELTA", analytics.DefaultMoodTrendDelta)
	v.SetDefault("DOMINANCE_SHARE", analytics.DefaultDominanceShare)
	v.SetDefault("HARD_DAY_SHARE", analytics.DefaultHardDayShare)
	v.SetDefault("HARD_DAY_MIN_SAMPLES", analytics.DefaultHardDayMinSamples)
	v.SetDefault("MIN_PATTERN_RECORDS", analytics.DefaultMinPatternRecords)
	v.SetDefault("TREND_MAX_DAYS", 30)
	v.SetDefault("PATTERN_WINDOW_DAYS", 30)
	v.SetDefault("DIGEST_INTERVAL", time.Hour)
}

// LoadConfig 从环境变量或配置文件加载配置
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		// 允许配置文件不存在，此时会从环境变量中读取
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	// AutomaticEnv 只对已知 key 生效，默认值已经注册了大部分 key，这里补齐其余的
	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "MONGO_URI",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "INTERNAL_AUTH_TOKEN", "VOCABULARY_FILE",
	} {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

// GetDBConnString 返回数据库连接字符串
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// GetRedisConnString 返回Redis连接字符串
func (c *Config) GetRedisConnString() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Location 解析配置的时区
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Thresholds 由配置生成的分析阈值
func (c *Config) Thresholds() analytics.Thresholds {
	th := analytics.DefaultThresholds()
	th.MoodTrendDelta = c.MoodTrendDelta
	th.DominanceShare = c.DominanceShare
	th.HardDayShare = c.HardDayShare
	th.HardDayMinSamples = c.HardDayMinSamples
	th.MinPatternRecords = c.MinPatternRecords
	return th
}

// NewEngine 按配置创建分析引擎，VOCABULARY_FILE 为空时使用内置词表
func (c *Config) NewEngine() (*analytics.Engine, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	opts := []analytics.Option{
		analytics.WithLocation(loc),
		analytics.WithThresholds(c.Thresholds()),
	}

	if c.VocabularyFile != "" {
		f, err := os.Open(c.VocabularyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open vocabulary file: %w", err)
		}
		defer f.Close()

		vocab, err := analytics.LoadVocabulary(f)
		if err != nil {
			return nil, err
		}
		opts = append(opts, analytics.WithVocabulary(vocab))
	}

	return analytics.New(opts...), nil
}
