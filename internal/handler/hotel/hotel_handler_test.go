package hotel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/validator"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
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

type apiEnv struct {
	router *gin.Engine
	db     *gorm.DB
	jwt    *jwt.Manager
	guest  *models.User
	owner  *models.User
	admin  *models.User
}

func setupHotelAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := testutil.NewDB(t)
	_, client := testutil.NewRedis(t)
	store := cache.NewStore(client, nil, "hotel")
	manager := jwt.NewManager(&jwt.Config{
		Secret:            "hotel-api-test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 2 * time.Hour,
		Issuer:            "test",
	})

	hotelRepo := repository.NewHotelRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	amenityRepo := repository.NewAmenityRepository(db)
	h := NewHandler(
		hotelService.NewHotelService(hotelRepo, roomRepo, repository.NewAddressRepository(db), amenityRepo, store),
		hotelService.NewRoomService(roomRepo, hotelRepo, repository.NewBookingRepository(db), amenityRepo, store),
		hotelService.NewAmenityService(amenityRepo, hotelRepo, roomRepo, store),
	)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	h.RegisterOwnerRoutes(v1.Group("", middleware.Auth(manager), middleware.RequireRole(models.RoleOwner, models.RoleAdmin)))
	h.RegisterAdminRoutes(v1.Group("", middleware.Auth(manager), middleware.RequireRole(models.RoleAdmin)))

	return &apiEnv{
		router: r,
		db:     db,
		jwt:    manager,
		guest:  testutil.CreateUser(t, db, models.RoleUser),
		owner:  testutil.CreateUser(t, db, models.RoleOwner),
		admin:  testutil.CreateUser(t, db, models.RoleAdmin),
	}
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
		pair, err := e.jwt.GenerateTokenPair(as.ID, as.Email, as.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

// ==================== 酒店测试 ====================

func TestHotelAPI_Hotels(t *testing.T) {
	env := setupHotelAPI(t)
	body := gin.H{"name": "Sea View", "location": "Mombasa", "rating": 4.5}

	t.Run("未登录不能创建", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/hotels", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("普通用户不能创建", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/hotels", body, env.guest)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	w, resp := env.do(t, http.MethodPost, "/api/v1/hotels", body, env.owner)
	require.Equal(t, http.StatusCreated, w.Code)
	var hotel models.Hotel
	require.NoError(t, json.Unmarshal(resp.Data, &hotel))
	path := fmt.Sprintf("/api/v1/hotels/%d", hotel.ID)

	t.Run("公开查询", func(t *testing.T) {
		w, _ := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, resp := env.do(t, http.MethodGet, "/api/v1/hotels?location=Mombasa", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("评分超出范围返回400", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPut, path, gin.H{"rating": 6}, env.owner)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("有房间时不能删除", func(t *testing.T) {
		testutil.CreateRoom(t, env.db, hotel.ID, 100, 2)
		w, resp := env.do(t, http.MethodDelete, path, nil, env.admin)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, appErrors.ErrHotelInUse.Code, resp.Code)
	})

	t.Run("详情包含房间", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, path+"/details", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var details struct {
			RoomList []json.RawMessage `json:"room_list"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &details))
		assert.Len(t, details.RoomList, 1)
	})

	t.Run("不存在的酒店", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, "/api/v1/hotels/99999", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, appErrors.ErrHotelNotFound.Code, resp.Code)
	})
}

// ==================== 房间测试 ====================

func TestHotelAPI_Rooms(t *testing.T) {
	env := setupHotelAPI(t)
	hotel := testutil.CreateHotel(t, env.db)

	t.Run("酒店不存在返回404", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/rooms", gin.H{
			"hotel_id": 99999, "room_type": "Suite", "price_per_night": 200, "capacity": 2,
		}, env.owner)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("价格必须为正", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/rooms", gin.H{
			"hotel_id": hotel.ID, "room_type": "Suite", "price_per_night": -1, "capacity": 2,
		}, env.owner)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w, resp := env.do(t, http.MethodPost, "/api/v1/rooms", gin.H{
		"hotel_id": hotel.ID, "room_type": "Suite", "price_per_night": 200, "capacity": 3,
	}, env.owner)
	require.Equal(t, http.StatusCreated, w.Code)
	var room models.Room
	require.NoError(t, json.Unmarshal(resp.Data, &room))

	t.Run("按人数筛选", func(t *testing.T) {
		w, resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms?hotel_id=%d&min_capacity=3", hotel.ID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("有预订时不能删除", func(t *testing.T) {
		testutil.CreateBooking(t, env.db, env.guest.ID, room.ID, "2025-03-10", "2025-03-12", models.BookingStatusConfirmed)

		w, resp := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/rooms/%d", room.ID), nil, env.owner)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, appErrors.ErrRoomInUse.Code, resp.Code)
	})
}

// ==================== 设施测试 ====================

func TestHotelAPI_Amenities(t *testing.T) {
	env := setupHotelAPI(t)
	hotel := testutil.CreateHotel(t, env.db)
	room := testutil.CreateRoom(t, env.db, hotel.ID, 100, 2)

	t.Run("业主不能管理设施", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/v1/amenities", gin.H{"name": "WiFi"}, env.owner)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	w, resp := env.do(t, http.MethodPost, "/api/v1/amenities", gin.H{"name": "WiFi"}, env.admin)
	require.Equal(t, http.StatusCreated, w.Code)
	var amenity models.Amenity
	require.NoError(t, json.Unmarshal(resp.Data, &amenity))

	t.Run("重名返回409", func(t *testing.T) {
		w, resp := env.do(t, http.MethodPost, "/api/v1/amenities", gin.H{"name": "WiFi"}, env.admin)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, appErrors.ErrAmenityExists.Code, resp.Code)
	})

	link := fmt.Sprintf("/api/v1/amenities/%d/entities", amenity.ID)
	entity := gin.H{"entity_id": room.ID, "entity_type": models.AmenityEntityRoom}

	t.Run("关联到房间", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, link, entity, env.admin)
		require.Equal(t, http.StatusCreated, w.Code)

		w, resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/details", room.ID), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(resp.Data), "WiFi")
	})

	t.Run("非法实体类型返回400", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, link, gin.H{"entity_id": room.ID, "entity_type": "user"}, env.admin)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("取消关联", func(t *testing.T) {
		w, _ := env.do(t, http.MethodDelete, link, entity, env.admin)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = env.do(t, http.MethodDelete, link, entity, env.admin)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
