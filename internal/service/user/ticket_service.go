package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notify"
)

// TicketService 客服工单服务
type TicketService struct {
	ticketRepo *repository.TicketRepository
	notifier   *notify.Notifier
}

// NewTicketService 创建客服工单服务
func NewTicketService(ticketRepo *repository.TicketRepository, notifier *notify.Notifier) *TicketService {
	return &TicketService{ticketRepo: ticketRepo, notifier: notifier}
}

// CreateTicketRequest 创建工单请求
type CreateTicketRequest struct {
	Subject     string `json:"subject" binding:"required,max=255"`
	Description string `json:"description" binding:"required,max=5000"`
}

// UpdateTicketRequest 更新工单请求
type UpdateTicketRequest struct {
	Subject     *string `json:"subject,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,min=1,max=5000"`
	Status      *string `json:"status,omitempty" binding:"omitempty,ticket_status"`
}

// ListTicketsRequest 工单列表筛选
type ListTicketsRequest struct {
	Status string `form:"status" binding:"omitempty,ticket_status"`
	UserID int64  `form:"user_id" binding:"omitempty,min=1"`
}

// Create 创建工单并通知值班人员
func (s *TicketService) Create(ctx context.Context, userID int64, req *CreateTicketRequest) (*models.SupportTicket, error) {
	ticket := &models.SupportTicket{
		UserID:      userID,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      models.TicketStatusOpen,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("support ticket created", logger.UserID(userID), logger.TicketID(ticket.ID))
	s.notifier.TicketCreated(ctx, ticket)
	return ticket, nil
}

// GetByID 获取工单，用户只能查看自己的
func (s *TicketService) GetByID(ctx context.Context, id, userID int64, isAdmin bool) (*models.SupportTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrTicketNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !isAdmin && ticket.UserID != userID {
		return nil, errors.ErrPermissionDenied
	}
	return ticket, nil
}

// Update 更新工单，状态只能由管理员修改
func (s *TicketService) Update(ctx context.Context, id, userID int64, isAdmin bool, req *UpdateTicketRequest) (*models.SupportTicket, error) {
	ticket, err := s.GetByID(ctx, id, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if req.Subject != nil {
		ticket.Subject = *req.Subject
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Status != nil {
		if !isAdmin {
			return nil, errors.ErrPermissionDenied
		}
		ticket.Status = *req.Status
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return ticket, nil
}

// Resolve 标记工单已解决
func (s *TicketService) Resolve(ctx context.Context, id int64) error {
	if err := s.ticketRepo.UpdateStatus(ctx, id, models.TicketStatusResolved); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrTicketNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	logger.Info("support ticket resolved", logger.TicketID(id))
	return nil
}

// Delete 删除工单
func (s *TicketService) Delete(ctx context.Context, id, userID int64, isAdmin bool) error {
	if _, err := s.GetByID(ctx, id, userID, isAdmin); err != nil {
		return err
	}
	if err := s.ticketRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrTicketNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// List 工单列表（管理端）
func (s *TicketService) List(ctx context.Context, offset, limit int, req *ListTicketsRequest) ([]*models.SupportTicket, int64, error) {
	filters := map[string]interface{}{
		"status":  req.Status,
		"user_id": req.UserID,
	}
	tickets, total, err := s.ticketRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return tickets, total, nil
}

// ListByUser 用户自己的工单
func (s *TicketService) ListByUser(ctx context.Context, userID int64, offset, limit int, status string) ([]*models.SupportTicket, int64, error) {
	return s.List(ctx, offset, limit, &ListTicketsRequest{Status: status, UserID: userID})
}
