package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	"github.com/dumeirei/hotel-booking-backend/internal/common/tracing"
	analyticsHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/analytics"
	authHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/auth"
	bookingHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/booking"
	hotelHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/hotel"
	paymentHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/payment"
	uploadHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/upload"
	userHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/user"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	uploadService "github.com/dumeirei/hotel-booking-backend/internal/service/upload"

	_ "github.com/dumeirei/hotel-booking-backend/docs"
)

const (
	// maxRequestBody 请求体上限，需容纳图片上传
	maxRequestBody = uploadService.MaxImageSize + 1<<20
	// webhookPath 支付回调由渠道重投，不做 IP 限流
	webhookPath = "/api/v1/webhook"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	svc *services,
	m *metrics.Metrics,
	tracer *tracing.Tracer,
) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	// 初始化处理器
	authH := authHandler.NewHandler(svc.auth)
	userH := userHandler.NewHandler(svc.user, svc.address, svc.ticket, svc.contact)
	hotelH := hotelHandler.NewHandler(svc.hotel, svc.room, svc.amenity)
	bookingH := bookingHandler.NewHandler(svc.booking, svc.voucher)
	paymentH := paymentHandler.NewHandler(svc.payment)
	uploadH := uploadHandler.NewHandler(svc.upload)
	analyticsH := analyticsHandler.NewHandler(svc.analytics)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&cfg.CORS))
	r.Use(middleware.Tracing(tracer, "/health", "/ping", "/ready", metricsPath))
	r.Use(middleware.AccessLog(logger))
	if m != nil {
		r.Use(m.Middleware(metricsPath))
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.IPRateLimit(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.WindowDuration(), webhookPath))
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))
	if m != nil {
		r.GET(metricsPath, metrics.Handler())
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RequestSizeLimiter(maxRequestBody))
	{
		// 公开接口（无需认证）
		public := v1.Group("")
		{
			authH.RegisterRoutes(public)
			hotelH.RegisterPublicRoutes(public)
			bookingH.RegisterPublicRoutes(public)
			userH.RegisterPublicRoutes(public)
		}

		// 支付回调（需要验签，不需要认证）
		paymentH.RegisterCallbackRoutes(v1)

		// 登录用户接口
		user := v1.Group("")
		user.Use(middleware.Auth(svc.jwt))
		if cfg.RateLimit.Enabled {
			user.Use(middleware.UserRateLimit(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.WindowDuration()))
		}
		{
			authH.RegisterProtectedRoutes(user)
			userH.RegisterRoutes(user)
			bookingH.RegisterRoutes(user)
			paymentH.RegisterRoutes(user)
		}

		// 业主与管理员接口
		owner := v1.Group("")
		owner.Use(middleware.Auth(svc.jwt), middleware.RequireRole(models.RoleOwner, models.RoleAdmin))
		{
			hotelH.RegisterOwnerRoutes(owner)
			bookingH.RegisterStaffRoutes(owner)
			uploadH.RegisterRoutes(owner)
		}

		// 管理员接口
		admin := v1.Group("")
		admin.Use(middleware.Auth(svc.jwt), middleware.RequireRole(models.RoleAdmin))
		{
			userH.RegisterAdminRoutes(admin)
			hotelH.RegisterAdminRoutes(admin)
			bookingH.RegisterAdminRoutes(admin)
			paymentH.RegisterAdminRoutes(admin)
			analyticsH.RegisterAdminRoutes(admin)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})
}
