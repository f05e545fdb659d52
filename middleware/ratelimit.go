package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdle 限流器空闲多久后回收
const DefaultLimiterIdle = 10 * time.Minute

// RateLimiter 按系统 ID 限流，没有系统 ID 的请求（内部路由）按 IP。
// 空闲的限流器会被回收，再次出现时重新从满桶开始。
type RateLimiter struct {
	limiters *cache.Cache // key -> *rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return newRateLimiter(rps, burst, DefaultLimiterIdle)
}

func newRateLimiter(rps float64, burst int, idle time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	// 回收时桶必须已经回满，否则回收会放宽限制
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &RateLimiter{
		limiters: cache.New(idle, idle),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		// 每次访问顺延过期时间
		rl.limiters.Set(key, l, cache.DefaultExpiration)
		return l
	}
	l := rate.NewLimiter(rl.rps, rl.burst)
	if err := rl.limiters.Add(key, l, cache.DefaultExpiration); err != nil {
		// 并发创建时使用已存在的
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// Len 当前持有的限流器数量
func (rl *RateLimiter) Len() int {
	return rl.limiters.ItemCount()
}

// Middleware 超出限制时返回 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextUID)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		if !rl.limiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}
