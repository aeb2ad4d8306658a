package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"quickride/pkg/cache"
	"quickride/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRateLimitedRouter(t *testing.T, limit int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	r := gin.New()
	r.Use(RateLimitMiddleware(cache.NewRedisCacheFromClient(client), limit, time.Hour, logger.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r, mr
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r, _ := newRateLimitedRouter(t, 3)

	for i := 1; i <= 3; i++ {
		w := get(r, "/ping", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if remaining := get(r, "/ping", nil); remaining.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the limit is spent, got %d", remaining.Code)
	} else if remaining.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("remaining header %q", remaining.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	r, mr := newRateLimitedRouter(t, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		if w := get(r, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("expected requests through while redis is down, got %d", w.Code)
		}
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header map[string]string
		want   string
	}{
		{"cookie wins", "from-cookie", map[string]string{"token": "from-header", "Authorization": "Bearer from-bearer"}, "from-cookie"},
		{"token header", "", map[string]string{"token": "from-header", "Authorization": "Bearer from-bearer"}, "from-header"},
		{"bearer", "", map[string]string{"Authorization": "Bearer from-bearer"}, "from-bearer"},
		{"none", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				c.Request.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			for k, v := range tt.header {
				c.Request.Header.Set(k, v)
			}

			if got := TokenFromRequest(c); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.quickride.in"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/ping", map[string]string{"Origin": "https://app.quickride.in"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.quickride.in" {
		t.Fatalf("allowed origin echoed as %q", got)
	}

	w = get(r, "/ping", map[string]string{"Origin": "https://evil.example"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin allowed: %q", got)
	}

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight expected 204, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen interface{}
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		seen = c.Request.Context().Value(logger.RequestIDKey)
		c.Status(http.StatusOK)
	})

	w := get(r, "/ping", map[string]string{"X-Request-ID": "req-42"})
	if w.Header().Get("X-Request-ID") != "req-42" || seen != "req-42" {
		t.Fatalf("request id not propagated: header %q ctx %v", w.Header().Get("X-Request-ID"), seen)
	}

	w = get(r, "/ping", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated request id")
	}
}
