package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"go-leavehub/internal/middleware"
)

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func TestRateLimitByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("blocks after burst is spent", func(t *testing.T) {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set("user_id", "user-1")
			c.Next()
		})
		// Refill hampir nol supaya burst yang menentukan.
		r.POST("/reset-password", middleware.RateLimitByUser(0.0001, 2), okHandler)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset-password", nil))
			codes = append(codes, w.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("keys limits per user", func(t *testing.T) {
		current := "user-a"
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set("user_id", current)
			c.Next()
		})
		r.POST("/reset-password", middleware.RateLimitByUser(0.0001, 1), okHandler)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset-password", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset-password", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		// User lain tidak terpengaruh oleh kuota user pertama.
		current = "user-b"
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset-password", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("passes through when no user in context", func(t *testing.T) {
		r := gin.New()
		r.POST("/logout", middleware.RateLimitByUser(0.0001, 1), okHandler)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/login", middleware.RateLimitByIP(0.0001, 2), okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
