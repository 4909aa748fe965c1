package booking

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// AvailabilityResult 可用性检查结果
type AvailabilityResult struct {
	RoomID       int64          `json:"room_id"`
	CheckInDate  models.Date    `json:"check_in_date" swaggertype:"string" example:"2025-03-10"`
	CheckOutDate models.Date    `json:"check_out_date" swaggertype:"string" example:"2025-03-12"`
	Available    bool           `json:"available"`
	Nights       int            `json:"nights"`
	TotalAmount  float64        `json:"total_amount"`
	Conflicts    []ConflictInfo `json:"conflicts"`
}

// ConflictInfo 占用区间
type ConflictInfo struct {
	BookingID     int64       `json:"booking_id"`
	CheckInDate   models.Date `json:"check_in_date" swaggertype:"string"`
	CheckOutDate  models.Date `json:"check_out_date" swaggertype:"string"`
	BookingStatus string      `json:"booking_status"`
}

// SearchRequest 可预订房间查询
type SearchRequest struct {
	CheckInDate  string `form:"check_in_date" binding:"required"`
	CheckOutDate string `form:"check_out_date" binding:"required"`
	Capacity     int    `form:"capacity" binding:"omitempty,min=1"`
	HotelID      int64  `form:"hotel_id" binding:"omitempty,min=1"`
}

// RoomQuote 可预订房间及区间报价
type RoomQuote struct {
	*models.Room
	Nights      int     `json:"nights"`
	TotalAmount float64 `json:"total_amount"`
}

// CheckAvailability 检查房间在 [checkIn, checkOut) 是否可预订，只读
// 已取消的预订不占用房间；同日退房与入住不冲突
func (s *BookingService) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut string) (*AvailabilityResult, error) {
	in, out, err := ParseRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !room.IsAvailable {
		return nil, errors.ErrRoomNotAvailable
	}

	overlapping, err := s.bookingRepo.ListOverlapping(ctx, roomID, in, out)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	result := &AvailabilityResult{
		RoomID:       roomID,
		CheckInDate:  in,
		CheckOutDate: out,
		Available:    len(overlapping) == 0,
		Nights:       in.NightsUntil(out),
		TotalAmount:  quote(room, in, out),
		Conflicts:    make([]ConflictInfo, 0, len(overlapping)),
	}
	for _, b := range overlapping {
		result.Conflicts = append(result.Conflicts, ConflictInfo{
			BookingID:     b.ID,
			CheckInDate:   b.CheckInDate,
			CheckOutDate:  b.CheckOutDate,
			BookingStatus: b.BookingStatus,
		})
	}
	return result, nil
}

// SearchAvailableRooms 查询区间内可预订的房间，容量不小于 Capacity
func (s *BookingService) SearchAvailableRooms(ctx context.Context, req *SearchRequest) ([]*RoomQuote, error) {
	in, out, err := ParseRange(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}
	capacity := req.Capacity
	if capacity < 1 {
		capacity = 1
	}

	rooms, err := s.roomRepo.SearchAvailable(ctx, in, out, capacity, req.HotelID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	nights := in.NightsUntil(out)
	result := make([]*RoomQuote, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, &RoomQuote{
			Room:        room,
			Nights:      nights,
			TotalAmount: quote(room, in, out),
		})
	}
	return result, nil
}
