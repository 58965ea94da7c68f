package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"go-leavehub/internal/middleware"
)

func setupIdempotencyRouter(userID string, handler gin.HandlerFunc) (*gin.Engine, redismock.ClientMock) {
	gin.SetMode(gin.TestMode)
	client, mock := redismock.NewClientMock()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/leaves", middleware.Idempotency(client), handler)
	return r, mock
}

func TestIdempotency_ReplaysOriginalStatusAndBody(t *testing.T) {
	userID := "4b4e7a2e-0000-0000-0000-000000000001"
	cacheKey := "idemp:/leaves:" + userID + ":key-1"

	envelope := []byte(`{"success":true,"data":{"id":"abc","total_days":5}}`)
	payload, err := json.Marshal(middleware.CachedResponse{Status: http.StatusCreated, Body: envelope})
	assert.NoError(t, err)

	router, mock := setupIdempotencyRouter(userID, func(c *gin.Context) {
		t.Fatal("handler should not run on a replayed request")
	})
	mock.ExpectGet(cacheKey).SetVal(string(payload))

	req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, string(envelope), w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_FirstRequestAcquiresLock(t *testing.T) {
	userID := "4b4e7a2e-0000-0000-0000-000000000002"
	cacheKey := "idemp:/leaves:" + userID + ":key-2"
	lockKey := cacheKey + ":lock"

	handlerRan := false
	router, mock := setupIdempotencyRouter(userID, func(c *gin.Context) {
		handlerRan = true
		assert.Equal(t, cacheKey, c.GetString("idempotency_cache_key"))
		assert.Equal(t, lockKey, c.GetString("idempotency_lock_key"))
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)

	req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
	req.Header.Set("Idempotency-Key", "key-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, handlerRan)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightDuplicateConflicts(t *testing.T) {
	userID := "4b4e7a2e-0000-0000-0000-000000000003"
	cacheKey := "idemp:/leaves:" + userID + ":key-3"
	lockKey := cacheKey + ":lock"

	router, mock := setupIdempotencyRouter(userID, func(c *gin.Context) {
		t.Fatal("handler should not run while the first request holds the lock")
	})
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

	req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
	req.Header.Set("Idempotency-Key", "key-3")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_SkipsWithoutKey(t *testing.T) {
	handlerRan := false
	router, _ := setupIdempotencyRouter("u", func(c *gin.Context) {
		handlerRan = true
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, handlerRan)
	assert.Equal(t, http.StatusCreated, w.Code)
}
