package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
	})
	return r
}

func TestAPIKeyAuth(t *testing.T) {
	r := newTestRouter(APIKeyAuth(StaticAPIKey("s3cret")))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong header", header: "nope", want: http.StatusUnauthorized},
		{name: "header", header: "s3cret", want: http.StatusOK},
		{name: "query", query: "?api_key=s3cret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := newTestRouter(RequestLogger())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated X-Request-ID header")
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "abc123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc123" {
		t.Errorf("expected propagated request id, got %q", got)
	}
	if body := w.Body.String(); body != `{"request_id":"abc123"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestRateLimit_WithoutRedis(t *testing.T) {
	r := newTestRouter(RateLimit(nil, DefaultRateLimitConfig()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	r := newTestRouter(RateLimit(client, DefaultRateLimitConfig()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Limit") != "" {
		t.Error("expected no rate limit headers when Redis is unavailable")
	}
}

func TestMetrics_PassesThrough(t *testing.T) {
	r := newTestRouter(Metrics())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRouteLabel(t *testing.T) {
	if got := routeLabel("/api/message/:room"); got != "/api/message/:room" {
		t.Errorf("expected route template, got %q", got)
	}
	if got := routeLabel(""); got != "unmatched" {
		t.Errorf("expected unmatched, got %q", got)
	}
}
