package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"go-leavehub/internal/auth"
	autherrors "go-leavehub/internal/auth/errors"
	authMock "go-leavehub/internal/auth/mock"
	usererrors "go-leavehub/internal/user/errors"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	handler := auth.NewHandler(mockService)
	router := setupAuthRouter()
	router.POST("/login", handler.Login)

	t.Run("success sets http-only cookie pair", func(t *testing.T) {
		reqBody := auth.LoginRequest{
			Telephone: "081234567890",
			Password:  "password123",
		}
		body, _ := json.Marshal(reqBody)

		expectedResp := auth.AuthResponse{
			ID:        uuid.New().String(),
			Telephone: reqBody.Telephone,
			Role:      "employee",
		}

		mockService.EXPECT().
			Login(gomock.Any(), reqBody.Telephone, reqBody.Password).
			Return("access-token", "refresh-token", expectedResp, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		assert.Len(t, cookies, 2)
		assert.Equal(t, "access_token", cookies[0].Name)
		assert.Equal(t, "access-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, "refresh_token", cookies[1].Name)
		assert.True(t, cookies[1].HttpOnly)

		var res map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &res)
		data := res["data"].(map[string]interface{})
		assert.Equal(t, "access-token", data["access_token"])
		assert.Equal(t, reqBody.Telephone, data["user"].(map[string]interface{})["telephone"])
	})

	t.Run("negative invalid credentials", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", "", auth.AuthResponse{}, autherrors.ErrInvalidCredentials)

		body, _ := json.Marshal(auth.LoginRequest{Telephone: "080000000000", Password: "123456"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("negative missing password", func(t *testing.T) {
		body := []byte(`{"telephone":"081234567890"}`)
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	handler := auth.NewHandler(mockService)
	router := setupAuthRouter()
	router.POST("/register", handler.Register)

	t.Run("success", func(t *testing.T) {
		reqData := auth.RegisterRequest{
			Name:      "Budi Santoso",
			Telephone: "081234567890",
			Email:     "budi@example.com",
			Password:  "password123",
		}
		body, _ := json.Marshal(reqData)

		mockService.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(auth.AuthResponse{Telephone: reqData.Telephone, Name: reqData.Name, Role: "employee"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("negative short password fails validation", func(t *testing.T) {
		body := []byte(`{"name":"X","telephone":"0812","email":"x@example.com","password":"123"}`)

		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative role supplied is forbidden", func(t *testing.T) {
		body := []byte(`{"name":"Sneaky","telephone":"0812999","email":"s@example.com","password":"password123","role":"admin"}`)

		mockService.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(auth.AuthResponse{}, autherrors.ErrRoleNotAssignable)

		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("negative duplicate telephone conflicts", func(t *testing.T) {
		body := []byte(`{"name":"Dupe","telephone":"081234567890","email":"d@example.com","password":"password123"}`)

		mockService.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(auth.AuthResponse{}, usererrors.ErrTelephoneAlreadyRegistered)

		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	handler := auth.NewHandler(mockService)
	router := setupAuthRouter()
	router.POST("/refresh-token", handler.RefreshToken)

	t.Run("success from cookie", func(t *testing.T) {
		mockService.EXPECT().
			RefreshToken(gomock.Any(), "refresh-cookie-token").
			Return("new-access-token", auth.AuthResponse{ID: uuid.New().String()}, nil)

		req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-cookie-token"})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var res map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &res)
		assert.Equal(t, "new-access-token", res["data"].(map[string]interface{})["access_token"])
	})

	t.Run("success from body", func(t *testing.T) {
		mockService.EXPECT().
			RefreshToken(gomock.Any(), "refresh-body-token").
			Return("new-access-token", auth.AuthResponse{}, nil)

		body := []byte(`{"refresh_token":"refresh-body-token"}`)
		req := httptest.NewRequest(http.MethodPost, "/refresh-token", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative missing token everywhere", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("negative stale token", func(t *testing.T) {
		mockService.EXPECT().
			RefreshToken(gomock.Any(), "stale-token").
			Return("", auth.AuthResponse{}, autherrors.ErrInvalidRefreshToken)

		req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "stale-token"})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	handler := auth.NewHandler(mockService)
	router := setupAuthRouter()
	router.POST("/logout", handler.Logout)

	t.Run("always succeeds and clears cookies", func(t *testing.T) {
		mockService.EXPECT().
			Logout(gomock.Any(), "some-refresh-token")

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "some-refresh-token"})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		assert.Len(t, cookies, 2)
		for _, cookie := range cookies {
			assert.Equal(t, -1, cookie.MaxAge)
			assert.Empty(t, cookie.Value)
		}
	})

	t.Run("succeeds even without any session", func(t *testing.T) {
		mockService.EXPECT().
			Logout(gomock.Any(), "")

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	handler := auth.NewHandler(mockService)
	router := setupAuthRouter()

	userID := uuid.New().String()
	router.GET("/me", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}, handler.Me)

	t.Run("success", func(t *testing.T) {
		mockService.EXPECT().
			GetMe(gomock.Any(), userID).
			Return(&auth.AuthResponse{ID: userID, Role: "employee"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandler_ResetPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	handler := auth.NewHandler(mockService)
	router := setupAuthRouter()
	router.POST("/reset-password", handler.ResetPassword)

	userID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		body, _ := json.Marshal(auth.ResetPasswordRequest{Telephone: "0811111111", NewPassword: "newpassword"})

		mockService.EXPECT().
			ResetPassword(gomock.Any(), gomock.Any()).
			Return(auth.ResetPasswordResponse{UserID: userID, ForceLogout: true}, nil)

		req := httptest.NewRequest(http.MethodPost, "/reset-password", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var res map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &res)
		assert.Equal(t, true, res["data"].(map[string]interface{})["force_logout"])
	})

	t.Run("negative short new password", func(t *testing.T) {
		body := []byte(`{"telephone":"0811111111","new_password":"123"}`)

		req := httptest.NewRequest(http.MethodPost, "/reset-password", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
