package main

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	analyticsService "github.com/dumeirei/hotel-booking-backend/internal/service/analytics"
	authService "github.com/dumeirei/hotel-booking-backend/internal/service/auth"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notify"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
	uploadService "github.com/dumeirei/hotel-booking-backend/internal/service/upload"
	userService "github.com/dumeirei/hotel-booking-backend/internal/service/user"
	"github.com/dumeirei/hotel-booking-backend/pkg/mqtt"
	"github.com/dumeirei/hotel-booking-backend/pkg/oss"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
	"github.com/dumeirei/hotel-booking-backend/pkg/stripe"
	"github.com/dumeirei/hotel-booking-backend/pkg/telegram"
)

// services 应用依赖
type services struct {
	jwt      *jwt.Manager
	notifier *notify.Notifier
	mqtt     *mqtt.Client

	auth      *authService.AuthService
	user      *userService.UserService
	address   *userService.AddressService
	ticket    *userService.TicketService
	contact   *userService.ContactService
	hotel     *hotelService.HotelService
	room      *hotelService.RoomService
	amenity   *hotelService.AmenityService
	booking   *bookingService.BookingService
	voucher   *bookingService.VoucherService
	payment   *paymentService.PaymentService
	upload    *uploadService.UploadService
	analytics *analyticsService.AnalyticsService
}

// newServices 初始化外部客户端、仓储与服务
func newServices(cfg *config.Config, log *zap.Logger, db *gorm.DB, redisClient *redis.Client, m *metrics.Metrics) (*services, error) {
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	// 初始化仓储
	userRepo := repository.NewUserRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	hotelRepo := repository.NewHotelRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	amenityRepo := repository.NewAmenityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reconRepo := repository.NewReconciliationRepository(db)
	analyticsRepo, err := repository.NewAnalyticsRepository(db)
	if err != nil {
		return nil, err
	}

	// 初始化外部服务客户端
	notifyOpts := []notify.Option{notify.WithMetrics(m)}

	smsSender, err := newSMSSender(&cfg.SMS)
	if err != nil {
		return nil, err
	}
	if smsSender != nil {
		notifyOpts = append(notifyOpts, notify.WithSMS(smsSender))
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient = mqtt.NewClient(&mqtt.Config{
			Broker:         cfg.MQTT.Broker,
			ClientID:       fmt.Sprintf("%s%d", cfg.MQTT.ClientIDPrefix, os.Getpid()),
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			QoS:            cfg.MQTT.QoS,
			Retained:       cfg.MQTT.Retained,
			KeepAlive:      cfg.MQTT.KeepAlive,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
			AutoReconnect:  cfg.MQTT.AutoReconnect,
			TopicPrefix:    cfg.MQTT.TopicPrefix,
		}, log)
		if err := mqttClient.Connect(); err != nil {
			log.Warn("MQTT connect failed, booking events disabled", zap.Error(err))
			mqttClient = nil
		} else {
			notifyOpts = append(notifyOpts, notify.WithMQTT(mqttClient, cfg.MQTT.TopicPrefix))
		}
	}

	if cfg.Telegram.Enabled {
		alerter, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.StaffChatID)
		if err != nil {
			return nil, err
		}
		notifyOpts = append(notifyOpts, notify.WithTelegram(alerter))
	}
	notifier := notify.New(notifyOpts...)

	uploader, err := newUploader(&cfg.OSS)
	if err != nil {
		return nil, err
	}

	signer, err := crypto.NewSigner(cfg.Crypto.VoucherSecret)
	if err != nil {
		return nil, err
	}

	stripeClient := stripe.NewClient(&stripe.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})

	hotelCache := cache.NewStore(redisClient, m, "hotel")
	hasher := crypto.NewPasswordHasher(cfg.Crypto.BcryptCost)

	return &services{
		jwt:      jwtManager,
		notifier: notifier,
		mqtt:     mqttClient,

		auth:    authService.NewAuthService(userRepo, jwtManager, hasher),
		user:    userService.NewUserService(userRepo, addressRepo, hasher),
		address: userService.NewAddressService(addressRepo, userRepo, hotelRepo),
		ticket:  userService.NewTicketService(ticketRepo, notifier),
		contact: userService.NewContactService(notifier),
		hotel:   hotelService.NewHotelService(hotelRepo, roomRepo, addressRepo, amenityRepo, hotelCache),
		room:    hotelService.NewRoomService(roomRepo, hotelRepo, bookingRepo, amenityRepo, hotelCache),
		amenity: hotelService.NewAmenityService(amenityRepo, hotelRepo, roomRepo, hotelCache),
		booking: bookingService.NewBookingService(db, bookingRepo, roomRepo, notifier, m),
		voucher: bookingService.NewVoucherService(bookingRepo, signer, qrcode.NewGenerator()),
		payment: paymentService.NewPaymentService(
			db, bookingRepo, paymentRepo, reconRepo, stripeClient,
			cache.NewStore(redisClient, m, "webhook"), notifier, m,
			paymentService.OptionsFromConfig(cfg),
		),
		upload:    uploadService.NewUploadService(uploader),
		analytics: analyticsService.NewAnalyticsService(analyticsRepo, cache.NewStore(redisClient, m, "analytics")),
	}, nil
}

// close 释放外部连接并等待未完成的通知
func (s *services) close() {
	s.notifier.Wait()
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
}

// newSMSSender 按配置选择短信发送器，未配置时不发送
func newSMSSender(cfg *config.SMSConfig) (sms.Sender, error) {
	switch cfg.Provider {
	case "aliyun":
		sender, err := sms.NewAliyunSender(&sms.AliyunConfig{
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.AccessKeySecret,
			SignName:        cfg.SignName,
			RegionID:        cfg.RegionID,
		})
		if err != nil {
			return nil, err
		}
		sender.SetTemplates(cfg.Templates)
		return sender, nil
	case "mock":
		return sms.NewMockSender(), nil
	default:
		return nil, nil
	}
}

// newUploader 按配置选择对象存储，未配置时上传接口返回 502
func newUploader(cfg *config.OSSConfig) (oss.Uploader, error) {
	switch cfg.Provider {
	case "aliyun":
		uploader, err := oss.NewAliyunUploader(&oss.AliyunConfig{
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.AccessKeySecret,
			BucketName:      cfg.Bucket,
			Domain:          cfg.CustomDomain,
			BasePath:        cfg.UploadDir,
		})
		if err != nil {
			return nil, err
		}
		return uploader, nil
	case "mock":
		return oss.NewMockUploader(), nil
	default:
		return nil, nil
	}
}
