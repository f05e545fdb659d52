package middleware

import (
	"AlterMoodGo/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString(ContextUID)})
	})
	r.GET("/t", handlers...)
	return r
}

func do(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	token, err := utils.GenerateToken("sys-1")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	r := newRouter(AuthMiddleware())

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"garbage", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"bearer", map[string]string{"Authorization": "Bearer " + token}, http.StatusOK},
		{"raw", map[string]string{"Authorization": token}, http.StatusOK},
	}
	for _, tt := range tests {
		if w := do(r, tt.header); w.Code != tt.want {
			t.Fatalf("%s: status=%d, want %d", tt.name, w.Code, tt.want)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/t?access_token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("query token: status=%d, want 200", w.Code)
	}
}

func TestInternalAuthMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"match", "s3cret", "s3cret", http.StatusOK},
		{"mismatch", "s3cret", "nope", http.StatusForbidden},
		{"unconfigured", "", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		r := newRouter(InternalAuthMiddleware(tt.token))
		if w := do(r, map[string]string{"X-Internal-Auth": tt.header}); w.Code != tt.want {
			t.Fatalf("%s: status=%d, want %d", tt.name, w.Code, tt.want)
		}
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0.001, 2)
	setUID := func(uid string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ContextUID, uid) }
	}
	a := newRouter(setUID("a"), rl.Middleware())
	b := newRouter(setUID("b"), rl.Middleware())

	for i := 0; i < 2; i++ {
		if w := do(a, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d, want 200", i, w.Code)
		}
	}
	if w := do(a, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", w.Code)
	}
	if w := do(b, nil); w.Code != http.StatusOK {
		t.Fatalf("other key status=%d, want 200", w.Code)
	}
}

func TestRateLimiterFallsBackToIP(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0.001, 1)
	r := newRouter(rl.Middleware())

	// httptest 请求的来源地址固定为 192.0.2.1
	if w := do(r, nil); w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	if w := do(r, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", w.Code)
	}
	if _, ok := rl.limiters.Get("ip:192.0.2.1"); !ok {
		t.Fatal("expected limiter keyed by client ip")
	}
}

func TestRateLimiterEvictsIdle(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(1000, 1, 20*time.Millisecond)
	for _, uid := range []string{"a", "b", "c"} {
		rl.limiter(uid)
	}
	if got := rl.Len(); got != 3 {
		t.Fatalf("Len=%d, want 3", got)
	}

	time.Sleep(50 * time.Millisecond)
	rl.limiter("c")
	rl.limiters.DeleteExpired()
	if got := rl.Len(); got != 1 {
		t.Fatalf("Len after idle=%d, want 1", got)
	}
}

func TestRateLimiterKeepsIdleUntilRefilled(t *testing.T) {
	t.Parallel()

	// 每秒 1 个、桶容量 60，回收时间不短于 60 秒
	rl := newRateLimiter(1, 60, time.Millisecond)
	rl.limiter("a")
	time.Sleep(10 * time.Millisecond)
	rl.limiters.DeleteExpired()
	if got := rl.Len(); got != 1 {
		t.Fatalf("Len=%d, want 1", got)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	t.Parallel()

	r := newRouter(RequestLogger())

	w := do(r, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated X-Request-ID")
	}

	w = do(r, map[string]string{"X-Request-ID": "abc"})
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("X-Request-ID=%q, want abc", got)
	}
}
