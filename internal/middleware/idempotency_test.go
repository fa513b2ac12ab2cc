package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-erp/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestIdempotency_PassesThroughWithoutKey(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payroll-runs", middleware.Idempotency(rdb), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll-runs", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReturnsCachedResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payroll-runs", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	}, middleware.Idempotency(rdb), func(c *gin.Context) {
		t.Fatal("handler should not run when the response is cached")
	})

	cacheKey := "idemp:/payroll-runs:user-1:abc-123"
	mock.ExpectGet(cacheKey).SetVal(`{"id":"run-1"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll-runs", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ConflictWhileProcessing(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payroll-runs", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	}, middleware.Idempotency(rdb), func(c *gin.Context) {
		t.Fatal("handler should not run while a duplicate is in flight")
	})

	cacheKey := "idemp:/payroll-runs:user-1:abc-123"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll-runs", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_AcquiresLockAndContinues(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payroll-runs", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	}, middleware.Idempotency(rdb), func(c *gin.Context) {
		cacheKey, _ := c.Get("idempotency_cache_key")
		assert.Equal(t, "idemp:/payroll-runs:user-1:abc-123", cacheKey)
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	cacheKey := "idemp:/payroll-runs:user-1:abc-123"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll-runs", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
