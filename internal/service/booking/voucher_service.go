package booking

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// VoucherService 入住凭证服务
type VoucherService struct {
	bookingRepo *repository.BookingRepository
	signer      *crypto.Signer
	generator   *qrcode.Generator
}

// NewVoucherService 创建入住凭证服务
func NewVoucherService(bookingRepo *repository.BookingRepository, signer *crypto.Signer, generator *qrcode.Generator) *VoucherService {
	if generator == nil {
		generator = qrcode.NewGenerator()
	}
	return &VoucherService{
		bookingRepo: bookingRepo,
		signer:      signer,
		generator:   generator,
	}
}

// Sign 生成带签名的凭证
func (s *VoucherService) Sign(b *models.Booking) qrcode.Voucher {
	v := qrcode.Voucher{BookingID: b.ID, CheckIn: b.CheckInDate.String()}
	v.Signature = s.signer.Sign(v.Payload())
	return v
}

// GeneratePNG 生成已确认预订的二维码图片
func (s *VoucherService) GeneratePNG(ctx context.Context, id int64, actor Actor) ([]byte, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !actor.canAccess(booking) {
		return nil, errors.ErrPermissionDenied
	}
	if booking.BookingStatus != models.BookingStatusConfirmed {
		return nil, errors.ErrBookingStatusError.WithMessage("只有已确认的预订可以生成入住凭证")
	}

	png, err := s.generator.GeneratePNG(s.Sign(booking).Content())
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return png, nil
}

// VerifyRequest 前台核验凭证
type VerifyRequest struct {
	Content string `json:"content" binding:"required"`
}

// Verify 核验二维码内容，返回对应的已确认预订
func (s *VoucherService) Verify(ctx context.Context, content string) (*BookingInfo, error) {
	v, err := qrcode.ParseVoucher(content)
	if err != nil {
		return nil, errors.ErrInvalidParams.WithMessage("无效的入住凭证")
	}
	if !s.signer.Verify(v.Payload(), v.Signature) {
		return nil, errors.ErrInvalidParams.WithMessage("入住凭证签名无效")
	}

	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, v.BookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if booking.CheckInDate.String() != v.CheckIn {
		return nil, errors.ErrInvalidParams.WithMessage("入住凭证已失效")
	}
	if booking.BookingStatus != models.BookingStatusConfirmed {
		return nil, errors.ErrBookingStatusError.WithMessage("预订未确认")
	}
	return toBookingInfo(booking), nil
}
