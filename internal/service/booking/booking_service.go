// Package booking 提供房间可用性检查与预订服务
package booking

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notify"
)

// 预订结果指标
const (
	outcomeCreated  = "created"
	outcomeConflict = "conflict"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// BookingService 预订服务
type BookingService struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
	roomRepo    *repository.RoomRepository
	notifier    *notify.Notifier
	metrics     *metrics.Metrics
}

// NewBookingService 创建预订服务
func NewBookingService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	roomRepo *repository.RoomRepository,
	notifier *notify.Notifier,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		notifier:    notifier,
		metrics:     m,
	}
}

// Actor 操作人
type Actor struct {
	UserID int64
	Role   string
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) canAccess(b *models.Booking) bool {
	return a.IsAdmin() || a.UserID == b.UserID
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	RoomID       int64  `json:"room_id" binding:"required,min=1"`
	CheckInDate  string `json:"check_in_date" binding:"required" example:"2025-03-10"`
	CheckOutDate string `json:"check_out_date" binding:"required" example:"2025-03-12"`
}

// UpdateBookingRequest 修改预订请求，未提供的字段保持不变
type UpdateBookingRequest struct {
	RoomID        *int64  `json:"room_id" binding:"omitempty,min=1"`
	CheckInDate   *string `json:"check_in_date"`
	CheckOutDate  *string `json:"check_out_date"`
	BookingStatus *string `json:"booking_status" binding:"omitempty,booking_status"`
}

// ListBookingsRequest 预订列表筛选
type ListBookingsRequest struct {
	Status string `form:"status" binding:"omitempty,booking_status"`
	UserID int64  `form:"user_id" binding:"omitempty,min=1"`
	RoomID int64  `form:"room_id" binding:"omitempty,min=1"`
}

// BookingInfo 预订信息
type BookingInfo struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"user_id"`
	RoomID        int64            `json:"room_id"`
	CheckInDate   models.Date      `json:"check_in_date" swaggertype:"string" example:"2025-03-10"`
	CheckOutDate  models.Date      `json:"check_out_date" swaggertype:"string" example:"2025-03-12"`
	Nights        int              `json:"nights"`
	TotalAmount   float64          `json:"total_amount"`
	BookingStatus string           `json:"booking_status"`
	User          *GuestInfo       `json:"user,omitempty"`
	Room          *models.Room     `json:"room,omitempty"`
	Payments      []models.Payment `json:"payments,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// GuestInfo 住客信息
type GuestInfo struct {
	ID           int64   `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

func toBookingInfo(b *models.Booking) *BookingInfo {
	info := &BookingInfo{
		ID:            b.ID,
		UserID:        b.UserID,
		RoomID:        b.RoomID,
		CheckInDate:   b.CheckInDate,
		CheckOutDate:  b.CheckOutDate,
		Nights:        b.Nights(),
		TotalAmount:   b.TotalAmount,
		BookingStatus: b.BookingStatus,
		Room:          b.Room,
		Payments:      b.Payments,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.User != nil {
		info.User = &GuestInfo{
			ID:           b.User.ID,
			FirstName:    b.User.FirstName,
			LastName:     b.User.LastName,
			Email:        b.User.Email,
			ContactPhone: b.User.ContactPhone,
		}
	}
	return info
}

// ParseRange 解析并校验入住区间 [checkIn, checkOut)
func ParseRange(checkIn, checkOut string) (models.Date, models.Date, error) {
	in, err := models.ParseDate(checkIn)
	if err != nil {
		return models.Date{}, models.Date{}, errors.ErrInvalidDate.WithMessage("无效的入住日期").WithError(err)
	}
	out, err := models.ParseDate(checkOut)
	if err != nil {
		return models.Date{}, models.Date{}, errors.ErrInvalidDate.WithMessage("无效的退房日期").WithError(err)
	}
	if !in.Before(out) {
		return models.Date{}, models.Date{}, errors.ErrInvalidRange
	}
	return in, out, nil
}

// quote 区间总价
func quote(room *models.Room, in, out models.Date) float64 {
	return utils.RoundMoney(float64(in.NightsUntil(out)) * room.PricePerNight)
}

// txError 事务错误映射：业务错误原样返回，排他约束冲突视为重叠
func txError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if database.IsExclusionViolation(err) {
		return errors.ErrBookingConflict
	}
	if err == gorm.ErrRecordNotFound {
		return errors.ErrBookingNotFound
	}
	return errors.ErrDatabaseError.WithError(err)
}

// CreateBooking 创建待支付预订
// 在同一事务内锁定房间行并复查重叠，同一房间的并发请求只有一个成功
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, req *CreateBookingRequest) (info *BookingInfo, err error) {
	ctx, span := tracing.StartSpan(ctx, "booking.create",
		tracing.WithUserID(userID),
		tracing.WithRoomID(req.RoomID),
	)
	defer func() { tracing.End(span, err) }()

	in, out, err := ParseRange(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		s.metrics.RecordBooking(outcomeRejected)
		return nil, err
	}

	var booking *models.Booking
	var room *models.Room
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = s.roomRepo.GetForUpdate(ctx, tx, req.RoomID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}
		if !room.IsAvailable {
			return errors.ErrRoomNotAvailable
		}

		conflict, err := s.bookingRepo.HasOverlap(ctx, tx, room.ID, in, out, 0)
		if err != nil {
			return err
		}
		if conflict {
			return errors.ErrBookingConflict
		}

		booking = &models.Booking{
			UserID:        userID,
			RoomID:        room.ID,
			CheckInDate:   in,
			CheckOutDate:  out,
			TotalAmount:   quote(room, in, out),
			BookingStatus: models.BookingStatusPending,
		}
		return s.bookingRepo.Create(ctx, tx, booking)
	})
	if err != nil {
		err = txError(err)
		switch {
		case errors.Is(err, errors.ErrBookingConflict):
			s.metrics.RecordBooking(outcomeConflict)
		case errors.Is(err, errors.ErrDatabaseError):
			s.metrics.RecordBooking(outcomeError)
		default:
			s.metrics.RecordBooking(outcomeRejected)
		}
		return nil, err
	}

	s.metrics.RecordBooking(outcomeCreated)
	tracing.SetAttributes(ctx, tracing.WithBookingID(booking.ID))
	logger.Info("booking created",
		logger.BookingID(booking.ID),
		logger.RoomID(room.ID),
		logger.UserID(userID),
		zap.String("check_in", in.String()),
		zap.String("check_out", out.String()),
	)

	booking.Room = room
	return toBookingInfo(booking), nil
}

// GetBooking 获取预订详情
func (s *BookingService) GetBooking(ctx context.Context, id int64, actor Actor) (*BookingInfo, error) {
	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !actor.canAccess(booking) {
		return nil, errors.ErrPermissionDenied
	}
	return toBookingInfo(booking), nil
}

// UpdateBooking 修改预订
// 修改房间或日期仅限待支付预订，且在事务内排除自身复查重叠；普通用户只能将状态改为已取消
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, actor Actor, req *UpdateBookingRequest) (*BookingInfo, error) {
	var booking *models.Booking
	var previous string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.bookingRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.canAccess(booking) {
			return errors.ErrPermissionDenied
		}
		previous = booking.BookingStatus

		in, out := booking.CheckInDate, booking.CheckOutDate
		if req.CheckInDate != nil || req.CheckOutDate != nil {
			inStr, outStr := in.String(), out.String()
			if req.CheckInDate != nil {
				inStr = *req.CheckInDate
			}
			if req.CheckOutDate != nil {
				outStr = *req.CheckOutDate
			}
			if in, out, err = ParseRange(inStr, outStr); err != nil {
				return err
			}
		}
		roomID := booking.RoomID
		if req.RoomID != nil {
			roomID = *req.RoomID
		}

		status := booking.BookingStatus
		if req.BookingStatus != nil {
			status = *req.BookingStatus
			if !models.IsValidBookingStatus(status) {
				return errors.ErrInvalidParams.WithMessage("无效的预订状态")
			}
			if !actor.IsAdmin() && status != booking.BookingStatus {
				if status != models.BookingStatusCancelled {
					return errors.ErrPermissionDenied
				}
				if booking.BookingStatus != models.BookingStatusPending {
					return errors.ErrBookingStatusError.WithMessage("只有待支付的预订可以取消")
				}
			}
		}

		moved := roomID != booking.RoomID || !in.Equal(booking.CheckInDate) || !out.Equal(booking.CheckOutDate)
		if moved && booking.BookingStatus != models.BookingStatusPending {
			return errors.ErrBookingStatusError.WithMessage("只有待支付的预订可以修改房间或日期")
		}
		reactivated := booking.BookingStatus == models.BookingStatusCancelled && status != models.BookingStatusCancelled

		if (moved || reactivated) && status != models.BookingStatusCancelled {
			room, err := s.roomRepo.GetForUpdate(ctx, tx, roomID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.ErrRoomNotFound
				}
				return err
			}
			if roomID != booking.RoomID && !room.IsAvailable {
				return errors.ErrRoomNotAvailable
			}
			conflict, err := s.bookingRepo.HasOverlap(ctx, tx, roomID, in, out, booking.ID)
			if err != nil {
				return err
			}
			if conflict {
				return errors.ErrBookingConflict
			}
			if moved {
				booking.TotalAmount = quote(room, in, out)
			}
		}

		booking.RoomID = roomID
		booking.CheckInDate = in
		booking.CheckOutDate = out
		booking.BookingStatus = status
		return s.bookingRepo.Update(ctx, tx, booking)
	})
	if err != nil {
		return nil, txError(err)
	}

	logger.Info("booking updated",
		logger.BookingID(booking.ID),
		logger.UserID(actor.UserID),
		zap.String("status", booking.BookingStatus),
	)
	if booking.BookingStatus != previous {
		s.notifyStatus(ctx, booking.ID)
	}
	return s.GetBooking(ctx, booking.ID, actor)
}

// CancelBooking 取消预订，只有待支付的预订可以取消
func (s *BookingService) CancelBooking(ctx context.Context, id int64, actor Actor) (*BookingInfo, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.canAccess(booking) {
			return errors.ErrPermissionDenied
		}
		if booking.BookingStatus != models.BookingStatusPending {
			return errors.ErrBookingStatusError.WithMessage("只有待支付的预订可以取消")
		}
		_, err = s.bookingRepo.UpdateStatus(ctx, tx, id, models.BookingStatusCancelled)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}

	logger.Info("booking cancelled", logger.BookingID(id), logger.UserID(actor.UserID))
	s.notifyStatus(ctx, id)
	return s.GetBooking(ctx, id, actor)
}

// ConfirmBooking 人工确认预订，已确认时直接返回
func (s *BookingService) ConfirmBooking(ctx context.Context, id int64) (*BookingInfo, error) {
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		switch booking.BookingStatus {
		case models.BookingStatusConfirmed:
			return nil
		case models.BookingStatusCancelled:
			return errors.ErrBookingStatusError.WithMessage("已取消的预订不能确认")
		}
		changed = true
		_, err = s.bookingRepo.UpdateStatus(ctx, tx, id, models.BookingStatusConfirmed)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}

	if changed {
		logger.Info("booking confirmed manually", logger.BookingID(id))
		s.notifyStatus(ctx, id)
	}
	return s.GetBooking(ctx, id, Actor{Role: models.RoleAdmin})
}

// DeleteBooking 删除预订及其支付记录
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrBookingNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	logger.Info("booking deleted", logger.BookingID(id))
	return nil
}

// ListBookings 预订列表（管理端）
func (s *BookingService) ListBookings(ctx context.Context, offset, limit int, req *ListBookingsRequest) ([]*BookingInfo, int64, error) {
	filters := map[string]interface{}{
		"status":  req.Status,
		"user_id": req.UserID,
		"room_id": req.RoomID,
	}
	bookings, total, err := s.bookingRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return toBookingInfos(bookings), total, nil
}

// ListUserBookings 用户自己的预订
func (s *BookingService) ListUserBookings(ctx context.Context, userID int64, offset, limit int, status string) ([]*BookingInfo, int64, error) {
	if status != "" && !models.IsValidBookingStatus(status) {
		return nil, 0, errors.ErrInvalidParams.WithMessage("无效的预订状态")
	}
	bookings, total, err := s.bookingRepo.ListByUser(ctx, userID, offset, limit, status)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return toBookingInfos(bookings), total, nil
}

func toBookingInfos(bookings []*models.Booking) []*BookingInfo {
	result := make([]*BookingInfo, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, toBookingInfo(b))
	}
	return result
}

// notifyStatus 状态变更后的通知
func (s *BookingService) notifyStatus(ctx context.Context, id int64) {
	if s.notifier == nil {
		return
	}
	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		logger.Warn("load booking for notification failed", logger.BookingID(id), zap.Error(err))
		return
	}
	switch booking.BookingStatus {
	case models.BookingStatusConfirmed:
		s.notifier.BookingConfirmed(ctx, notify.NoticeFromBooking(booking))
	case models.BookingStatusCancelled:
		s.notifier.BookingCancelled(ctx, notify.NoticeFromBooking(booking))
	}
}
