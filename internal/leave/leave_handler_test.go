package leave_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"go-leavehub/internal/leave"
	leaveerrors "go-leavehub/internal/leave/errors"
	leaveMock "go-leavehub/internal/leave/mock"
)

func setupLeaveRouter(userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})
	return r
}

func TestHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New().String()
	mockService := leaveMock.NewMockService(ctrl)
	handler := leave.NewHandler(mockService, nil)
	router := setupLeaveRouter(userID, "employee")
	router.POST("/leaves", handler.Create)

	t.Run("success", func(t *testing.T) {
		reqBody := leave.CreateLeaveRequest{
			Category:  "annual",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
			Reason:    "Family event",
		}
		body, _ := json.Marshal(reqBody)

		mockService.EXPECT().
			Create(gomock.Any(), userID, reqBody).
			Return(leave.LeaveResponse{ID: uuid.New().String(), TotalDays: 5, Status: leave.StatusPending}, nil)

		req := httptest.NewRequest(http.MethodPost, "/leaves", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var res map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &res)
		assert.Equal(t, true, res["success"])
		assert.Equal(t, float64(5), res["data"].(map[string]interface{})["total_days"])
	})

	t.Run("success caches envelope with created status for replay", func(t *testing.T) {
		client, redisMock := redismock.NewClientMock()
		cachingHandler := leave.NewHandler(mockService, client)
		cacheKey := "idemp:/leaves:" + userID + ":key-9"
		lockKey := cacheKey + ":lock"

		r := setupLeaveRouter(userID, "employee")
		r.POST("/leaves", func(c *gin.Context) {
			c.Set("idempotency_cache_key", cacheKey)
			c.Set("idempotency_lock_key", lockKey)
			c.Next()
		}, cachingHandler.Create)

		reqBody := leave.CreateLeaveRequest{
			Category:  "annual",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
			Reason:    "Family event",
		}
		body, _ := json.Marshal(reqBody)

		mockService.EXPECT().
			Create(gomock.Any(), userID, reqBody).
			Return(leave.LeaveResponse{ID: uuid.New().String(), TotalDays: 5, Status: leave.StatusPending}, nil)

		redisMock.Regexp().ExpectSet(cacheKey, `\{"status":201,"body":.*\}`, 24*time.Hour).SetVal("OK")
		redisMock.ExpectDel(lockKey).SetVal(1)

		req := httptest.NewRequest(http.MethodPost, "/leaves", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("negative unknown category", func(t *testing.T) {
		body := []byte(`{"category":"sabbatical","start_date":"2026-03-02","end_date":"2026-03-06","reason":"x"}`)

		req := httptest.NewRequest(http.MethodPost, "/leaves", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative missing reason", func(t *testing.T) {
		body := []byte(`{"category":"annual","start_date":"2026-03-02","end_date":"2026-03-06"}`)

		req := httptest.NewRequest(http.MethodPost, "/leaves", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Approve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	approverID := uuid.New().String()
	mockService := leaveMock.NewMockService(ctrl)
	handler := leave.NewHandler(mockService, nil)
	router := setupLeaveRouter(approverID, "manager")
	router.PUT("/leaves/:id/approve", handler.Approve)

	leaveID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockService.EXPECT().
			Approve(gomock.Any(), approverID, leaveID).
			Return(leave.LeaveResponse{ID: leaveID, Status: leave.StatusApproved}, nil)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative already decided conflicts", func(t *testing.T) {
		mockService.EXPECT().
			Approve(gomock.Any(), approverID, leaveID).
			Return(leave.LeaveResponse{}, leaveerrors.ErrLeaveNotPending)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("negative insufficient balance conflicts", func(t *testing.T) {
		mockService.EXPECT().
			Approve(gomock.Any(), approverID, leaveID).
			Return(leave.LeaveResponse{}, leaveerrors.ErrInsufficientBalance)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("negative not found", func(t *testing.T) {
		mockService.EXPECT().
			Approve(gomock.Any(), approverID, leaveID).
			Return(leave.LeaveResponse{}, leaveerrors.ErrLeaveNotFound)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/approve", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_Reject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	approverID := uuid.New().String()
	mockService := leaveMock.NewMockService(ctrl)
	handler := leave.NewHandler(mockService, nil)
	router := setupLeaveRouter(approverID, "manager")
	router.PUT("/leaves/:id/reject", handler.Reject)

	leaveID := uuid.New().String()

	t.Run("success with reason", func(t *testing.T) {
		body := []byte(`{"rejection_reason":"too many absences"}`)

		mockService.EXPECT().
			Reject(gomock.Any(), approverID, leaveID, "too many absences").
			Return(leave.LeaveResponse{ID: leaveID, Status: leave.StatusRejected}, nil)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/reject", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success without body", func(t *testing.T) {
		mockService.EXPECT().
			Reject(gomock.Any(), approverID, leaveID, "").
			Return(leave.LeaveResponse{ID: leaveID, Status: leave.StatusRejected}, nil)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/reject", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandler_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ownerID := uuid.New().String()
	mockService := leaveMock.NewMockService(ctrl)
	handler := leave.NewHandler(mockService, nil)
	router := setupLeaveRouter(ownerID, "employee")
	router.PUT("/leaves/:id/cancel", handler.Cancel)

	leaveID := uuid.New().String()

	t.Run("negative not owner forbidden", func(t *testing.T) {
		mockService.EXPECT().
			Cancel(gomock.Any(), ownerID, leaveID).
			Return(leave.LeaveResponse{}, leaveerrors.ErrNotLeaveOwner)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("negative rejected not cancellable", func(t *testing.T) {
		mockService.EXPECT().
			Cancel(gomock.Any(), ownerID, leaveID).
			Return(leave.LeaveResponse{}, leaveerrors.ErrLeaveNotCancellable)

		req := httptest.NewRequest(http.MethodPut, "/leaves/"+leaveID+"/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	managerID := uuid.New().String()
	mockService := leaveMock.NewMockService(ctrl)
	handler := leave.NewHandler(mockService, nil)
	router := setupLeaveRouter(managerID, "manager")
	router.GET("/leaves", handler.GetAll)

	t.Run("success with filter and pagination meta", func(t *testing.T) {
		// Paging dikerjakan repository; handler hanya meneruskan filter dan
		// membangun meta dari total.
		mockService.EXPECT().
			GetAll(gomock.Any(), leave.ListLeavesFilterRequest{Status: "pending", Page: 1, PageSize: 1}).
			Return([]leave.LeaveResponse{
				{ID: uuid.New().String(), Status: leave.StatusPending},
			}, int64(2), nil)

		req := httptest.NewRequest(http.MethodGet, "/leaves?status=pending&page=1&page_size=1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var res map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &res)
		assert.Len(t, res["data"], 1)
		meta := res["meta"].(map[string]interface{})
		assert.Equal(t, float64(2), meta["total"])
		assert.Equal(t, float64(2), meta["totalPages"])
	})

	t.Run("defaults page and page size when absent", func(t *testing.T) {
		mockService.EXPECT().
			GetAll(gomock.Any(), leave.ListLeavesFilterRequest{Page: 1, PageSize: 10}).
			Return([]leave.LeaveResponse{}, int64(0), nil)

		req := httptest.NewRequest(http.MethodGet, "/leaves", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative invalid status filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leaves?status=bogus", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New().String()
	mockService := leaveMock.NewMockService(ctrl)
	handler := leave.NewHandler(mockService, nil)
	router := setupLeaveRouter(userID, "employee")
	router.GET("/leaves/stats", handler.Stats)

	t.Run("success with explicit year", func(t *testing.T) {
		mockService.EXPECT().
			Stats(gomock.Any(), userID, 2026).
			Return(leave.LeaveStatsResponse{Year: 2026}, nil)

		req := httptest.NewRequest(http.MethodGet, "/leaves/stats?year=2026", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing year defaults to current", func(t *testing.T) {
		mockService.EXPECT().
			Stats(gomock.Any(), userID, 0).
			Return(leave.LeaveStatsResponse{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/leaves/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative non-numeric year", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leaves/stats?year=abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
