package user

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notify"
)

// ContactService 访客联系表单
type ContactService struct {
	notifier *notify.Notifier
}

// NewContactService 创建联系表单服务
func NewContactService(notifier *notify.Notifier) *ContactService {
	return &ContactService{notifier: notifier}
}

// ContactRequest 联系表单
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=2000"`
}

// ContactResponse 提交结果
type ContactResponse struct {
	Message string `json:"message"`
}

// Submit 清理输入后转发给值班人员
func (s *ContactService) Submit(ctx context.Context, req *ContactRequest) (*ContactResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := utils.NormalizeEmail(req.Email)
	message := strings.TrimSpace(req.Message)

	switch {
	case name == "":
		return nil, errors.ErrInvalidParams.WithMessage("姓名不能为空")
	case message == "":
		return nil, errors.ErrInvalidParams.WithMessage("留言不能为空")
	case utf8.RuneCountInString(name) > 100 || utf8.RuneCountInString(message) > 2000:
		return nil, errors.ErrInvalidParams.WithMessage("内容过长")
	}

	logger.Info("contact message received",
		zap.String("name", name),
		zap.Int("message_length", utf8.RuneCountInString(message)),
	)
	s.notifier.ContactMessage(ctx, name, email, message)
	return &ContactResponse{Message: "Your message has been sent successfully!"}, nil
}
