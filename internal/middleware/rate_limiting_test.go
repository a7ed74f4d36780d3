package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitMiddlewareRejectsAfterBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := NewRateLimitManager(context.Background(), RateLimitConfig{Requests: 2, WindowSeconds: 3600})
	defer manager.Shutdown()

	router := gin.New()
	router.Use(RateLimitMiddleware(manager))
	router.GET("/api/v1/templates", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health checks must bypass the limiter, got %d", w.Code)
	}
}

func TestUploadRateLimitOnlyCountsMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := NewRateLimitManager(context.Background(), RateLimitConfig{UploadRequests: 1, UploadWindow: 3600})
	defer manager.Shutdown()

	router := gin.New()
	router.POST("/content", UploadRateLimitMiddleware(manager), func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(contentType string) int {
		req := httptest.NewRequest(http.MethodPost, "/content", strings.NewReader("{}"))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("multipart/form-data; boundary=x"); code != http.StatusCreated {
		t.Fatalf("first upload: expected 201, got %d", code)
	}
	if code := send("multipart/form-data; boundary=x"); code != http.StatusTooManyRequests {
		t.Fatalf("second upload: expected 429, got %d", code)
	}
	if code := send("application/json"); code != http.StatusCreated {
		t.Fatalf("json request: expected 201, got %d", code)
	}
}

func TestRateLimitManagerDisabledAndCleanup(t *testing.T) {
	manager := NewRateLimitManager(context.Background(), RateLimitConfig{Requests: 5, WindowSeconds: 60})
	defer manager.Shutdown()

	if manager.GetUploadLimiter("1.2.3.4") != nil {
		t.Fatalf("upload limiter must be nil when disabled")
	}
	if manager.GetVisitor("1.2.3.4") == nil {
		t.Fatalf("expected a general limiter")
	}

	manager.cleanup(time.Now().Add(time.Hour))
	if manager.general.size() != 0 {
		t.Fatalf("expected idle visitors to be pruned")
	}

	var nilManager *RateLimitManager
	if nilManager.GetVisitor("x") != nil {
		t.Fatalf("nil manager must not limit")
	}
}
