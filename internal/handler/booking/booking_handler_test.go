package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-backend/internal/common/validator"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
	"github.com/dumeirei/hotel-booking-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = validator.Register()
}

type apiEnv struct {
	router *gin.Engine
	db     *gorm.DB
	jwt    *jwt.Manager
	guest  *models.User
	other  *models.User
	admin  *models.User
	room   *models.Room
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupBookingAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := testutil.NewDB(t)

	manager := jwt.NewManager(&jwt.Config{
		Secret:            "booking-api-test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 2 * time.Hour,
		Issuer:            "test",
	})

	bookingRepo := repository.NewBookingRepository(db)
	svc := bookingService.NewBookingService(db, bookingRepo, repository.NewRoomRepository(db), nil, nil)
	signer, err := crypto.NewSigner("booking-api-voucher")
	require.NoError(t, err)
	voucher := bookingService.NewVoucherService(bookingRepo, signer, qrcode.NewGenerator())
	h := NewHandler(svc, voucher)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	h.RegisterRoutes(v1.Group("", middleware.Auth(manager)))
	h.RegisterStaffRoutes(v1.Group("", middleware.Auth(manager), middleware.RequireRole(models.RoleOwner, models.RoleAdmin)))
	h.RegisterAdminRoutes(v1.Group("", middleware.Auth(manager), middleware.RequireRole(models.RoleAdmin)))

	hotel := testutil.CreateHotel(t, db)
	return &apiEnv{
		router: r,
		db:     db,
		jwt:    manager,
		guest:  testutil.CreateUser(t, db, models.RoleUser),
		other:  testutil.CreateUser(t, db, models.RoleUser),
		admin:  testutil.CreateUser(t, db, models.RoleAdmin),
		room:   testutil.CreateRoom(t, db, hotel.ID, 150, 2),
	}
}

func (e *apiEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	pair, err := e.jwt.GenerateTokenPair(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return pair.AccessToken
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}, as *models.User) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(t, as))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	if w.Header().Get("Content-Type") != "image/png" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func createBody(roomID int64, in, out string) gin.H {
	return gin.H{"room_id": roomID, "check_in_date": in, "check_out_date": out}
}

// ==================== 创建预订测试 ====================

func TestBookingAPI_Create(t *testing.T) {
	env := setupBookingAPI(t)

	t.Run("创建成功返回201", func(t *testing.T) {
		w, resp := env.do(t, http.MethodPost, "/api/v1/booking", createBody(env.room.ID, "2025-03-10", "2025-03-12"), env.guest)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 0, resp.Code)

		var info bookingService.BookingInfo
		require.NoError(t, json.Unmarshal(resp.Data, &info))
		assert.Equal(t, models.BookingStatusPending, info.BookingStatus)
		assert.Equal(t, "2025-03-10", info.CheckInDate.String())
		assert.Equal(t, 2, info.Nights)
		assert.InDelta(t, 300.0, info.TotalAmount, 0.001)
	})

	t.Run("区间重叠返回409", func(t *testing.T) {
		w, resp := env.do(t, http.MethodPost, "/api/v1/booking", createBody(env.room.ID, "2025-03-11", "2025-03-13"), env.other)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, appErrors.ErrBookingConflict.Code, resp.Code)
	})

	t.Run("同日退房入住不冲突", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/booking", createBody(env.room.ID, "2025-03-12", "2025-03-14"), env.other)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("日期倒置返回400", func(t *testing.T) {
		w, resp := env.do(t, http.MethodPost, "/api/v1/booking", createBody(env.room.ID, "2025-05-12", "2025-05-10"), env.guest)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, appErrors.ErrInvalidRange.Code, resp.Code)
	})

	t.Run("缺少日期返回400", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/booking", gin.H{"room_id": env.room.ID}, env.guest)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("房间不存在返回404", func(t *testing.T) {
		w, resp := env.do(t, http.MethodPost, "/api/v1/booking", createBody(99999, "2025-06-10", "2025-06-12"), env.guest)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, appErrors.ErrRoomNotFound.Code, resp.Code)
	})

	t.Run("未登录返回401", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/booking", createBody(env.room.ID, "2025-07-10", "2025-07-12"), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookingAPI_ConcurrentCreate(t *testing.T) {
	env := setupBookingAPI(t)

	const n = 5
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, _ := env.do(t, http.MethodPost, "/api/v1/booking", createBody(env.room.ID, "2025-08-01", "2025-08-04"), env.guest)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, created)
}

// ==================== 查询与权限测试 ====================

func TestBookingAPI_Access(t *testing.T) {
	env := setupBookingAPI(t)
	b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)
	path := fmt.Sprintf("/api/v1/booking/%d", b.ID)

	t.Run("本人可查看", func(t *testing.T) {
		w, _ := env.do(t, http.MethodGet, path, nil, env.guest)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("他人返回403", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, path, nil, env.other)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, appErrors.ErrPermissionDenied.Code, resp.Code)
	})

	t.Run("非法ID返回400", func(t *testing.T) {
		w, _ := env.do(t, http.MethodGet, "/api/v1/booking/abc", nil, env.guest)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("普通用户不能查看全部预订", func(t *testing.T) {
		w, _ := env.do(t, http.MethodGet, "/api/v1/bookings", nil, env.guest)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("普通用户不能确认预订", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPut, path+"/confirm", nil, env.guest)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBookingAPI_List(t *testing.T) {
	env := setupBookingAPI(t)
	for i := 0; i < 3; i++ {
		in := fmt.Sprintf("2025-04-%02d", 1+i*3)
		out := fmt.Sprintf("2025-04-%02d", 3+i*3)
		testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, in, out, models.BookingStatusPending)
	}
	testutil.CreateBooking(t, env.db, env.other.ID, env.room.ID, "2025-05-01", "2025-05-02", models.BookingStatusCancelled)

	t.Run("我的预订分页", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, "/api/v1/user/bookings?page=1&limit=2", nil, env.guest)
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			List            []bookingService.BookingInfo `json:"list"`
			Total           int64                        `json:"total"`
			TotalPages      int                          `json:"total_pages"`
			HasNextPage     bool                         `json:"has_next_page"`
			HasPreviousPage bool                         `json:"has_previous_page"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Len(t, page.List, 2)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.True(t, page.HasNextPage)
		assert.False(t, page.HasPreviousPage)
	})

	t.Run("管理员按状态筛选", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, "/api/v1/bookings?status=Cancelled", nil, env.admin)
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("非法状态返回400", func(t *testing.T) {
		w, _ := env.do(t, http.MethodGet, "/api/v1/bookings?status=cancelled", nil, env.admin)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// ==================== 状态变更测试 ====================

func TestBookingAPI_Transitions(t *testing.T) {
	env := setupBookingAPI(t)

	t.Run("取消后区间释放", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-09-01", "2025-09-03", models.BookingStatusPending)

		w, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/booking/%d/cancel", b.ID), nil, env.guest)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = env.do(t, http.MethodPost, "/api/v1/booking", createBody(env.room.ID, "2025-09-01", "2025-09-03"), env.other)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("管理员确认并生成凭证", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-10-01", "2025-10-03", models.BookingStatusPending)
		base := fmt.Sprintf("/api/v1/booking/%d", b.ID)

		w, _ := env.do(t, http.MethodGet, base+"/voucher", nil, env.guest)
		assert.Equal(t, http.StatusConflict, w.Code)

		w, resp := env.do(t, http.MethodPut, base+"/confirm", nil, env.admin)
		require.Equal(t, http.StatusOK, w.Code)
		var info bookingService.BookingInfo
		require.NoError(t, json.Unmarshal(resp.Data, &info))
		assert.Equal(t, models.BookingStatusConfirmed, info.BookingStatus)

		w, _ = env.do(t, http.MethodGet, base+"/voucher", nil, env.guest)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.NotEmpty(t, w.Body.Bytes())
	})

	t.Run("管理员删除", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-11-01", "2025-11-03", models.BookingStatusPending)
		testutil.CreatePayment(t, env.db, b.ID, "pi_delete", models.PaymentStatusPending)

		w, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/booking/%d", b.ID), nil, env.admin)
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		env.db.Model(&models.Payment{}).Where("booking_id = ?", b.ID).Count(&count)
		assert.Zero(t, count)
	})
}

// ==================== 可订查询测试 ====================

func TestBookingAPI_Availability(t *testing.T) {
	env := setupBookingAPI(t)
	testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusConfirmed)
	path := fmt.Sprintf("/api/v1/rooms/%d/availability", env.room.ID)

	t.Run("重叠区间不可订", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, path+"?check_in_date=2025-03-11&check_out_date=2025-03-13", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result bookingService.AvailabilityResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.False(t, result.Available)
		assert.Len(t, result.Conflicts, 1)
	})

	t.Run("相邻区间可订", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, path+"?check_in_date=2025-03-12&check_out_date=2025-03-14", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result bookingService.AvailabilityResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.True(t, result.Available)
		assert.InDelta(t, 300.0, result.TotalAmount, 0.001)
	})

	t.Run("缺少日期返回400", func(t *testing.T) {
		w, _ := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("搜索可订房间", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, "/api/v1/rooms/available?check_in_date=2025-03-11&check_out_date=2025-03-12&capacity=2", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rooms []bookingService.RoomQuote
		require.NoError(t, json.Unmarshal(resp.Data, &rooms))
		assert.Empty(t, rooms)

		w, resp = env.do(t, http.MethodGet, "/api/v1/rooms/available?check_in_date=2025-03-12&check_out_date=2025-03-13", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(resp.Data, &rooms))
		assert.Len(t, rooms, 1)
	})
}
