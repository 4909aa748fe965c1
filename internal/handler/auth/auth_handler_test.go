package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/validator"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	authService "github.com/dumeirei/hotel-booking-backend/internal/service/auth"
	"github.com/dumeirei/hotel-booking-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = validator.Register()
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func setupAuthAPI(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.NewDB(t)
	manager := jwt.NewManager(&jwt.Config{
		Secret:            "auth-api-test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 2 * time.Hour,
		Issuer:            "test",
	})
	h := NewHandler(authService.NewAuthService(repository.NewUserRepository(db), manager, crypto.NewPasswordHasher(4)))

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterRoutes(v1)
	h.RegisterProtectedRoutes(v1.Group("", middleware.Auth(manager)))
	return r
}

func call(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestAuthAPI(t *testing.T) {
	r := setupAuthAPI(t)
	register := gin.H{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@example.com",
		"password":   "cobol1959",
	}

	var login authService.LoginResponse

	t.Run("注册返回201", func(t *testing.T) {
		w, resp := call(t, r, http.MethodPost, "/api/v1/auth/register", register, "")
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(resp.Data, &login))
		assert.Equal(t, "grace@example.com", login.User.Email)
		assert.NotEmpty(t, login.TokenPair.AccessToken)
	})

	t.Run("重复注册返回409", func(t *testing.T) {
		w, resp := call(t, r, http.MethodPost, "/api/v1/auth/register", register, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, appErrors.ErrEmailExists.Code, resp.Code)
	})

	t.Run("邮箱格式错误返回400", func(t *testing.T) {
		w, _ := call(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
			"first_name": "X", "last_name": "Y", "email": "not-an-email", "password": "secret1",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("登录", func(t *testing.T) {
		w, _ := call(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "GRACE@example.com", "password": "cobol1959"}, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w, resp := call(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "grace@example.com", "password": "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, appErrors.ErrPasswordError.Code, resp.Code)
	})

	t.Run("刷新令牌", func(t *testing.T) {
		w, _ := call(t, r, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": login.TokenPair.RefreshToken}, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = call(t, r, http.MethodPost, "/api/v1/auth/refresh", gin.H{"refresh_token": login.TokenPair.AccessToken}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("当前用户", func(t *testing.T) {
		w, resp := call(t, r, http.MethodGet, "/api/v1/auth/me", nil, login.TokenPair.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)

		var info authService.UserInfo
		require.NoError(t, json.Unmarshal(resp.Data, &info))
		assert.Equal(t, login.User.ID, info.ID)

		w, _ = call(t, r, http.MethodGet, "/api/v1/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
