// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
type AppError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，WithError/WithMessage 派生的错误与原哨兵相等
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Status 返回对应的 HTTP 状态码
func (e *AppError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// New 创建新的应用错误
func New(code int, message string, status ...int) *AppError {
	httpStatus := http.StatusInternalServerError
	if len(status) > 0 {
		httpStatus = status[0]
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    message,
		HTTPStatus: e.HTTPStatus,
		Err:        e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Err:        err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误", http.StatusBadRequest)
	ErrNotFound        = New(1002, "资源不存在", http.StatusNotFound)
	ErrAlreadyExists   = New(1003, "资源已存在", http.StatusConflict)
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrExternalService = New(1007, "外部服务错误", http.StatusBadGateway)
	ErrRateLimitExceed = New(1008, "请求过于频繁", http.StatusTooManyRequests)
	ErrInvalidDate     = New(1009, "无效的日期", http.StatusBadRequest)
	ErrInvalidRange    = New(1010, "退房日期必须晚于入住日期", http.StatusBadRequest)
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录", http.StatusUnauthorized)
	ErrTokenExpired     = New(2001, "登录已过期", http.StatusUnauthorized)
	ErrTokenInvalid     = New(2002, "无效的令牌", http.StatusUnauthorized)
	ErrPermissionDenied = New(2004, "权限不足", http.StatusForbidden)
	ErrPasswordError    = New(2007, "邮箱或密码错误", http.StatusUnauthorized)
)

// 用户错误码 (3000-3999)
var (
	ErrUserNotFound = New(3000, "用户不存在", http.StatusNotFound)
	ErrEmailExists  = New(3001, "邮箱已被注册", http.StatusConflict)
)

// 酒店错误码 (4000-4999)
var (
	ErrHotelNotFound         = New(4000, "酒店不存在", http.StatusNotFound)
	ErrRoomNotFound          = New(4001, "房间不存在", http.StatusNotFound)
	ErrAmenityNotFound       = New(4002, "设施不存在", http.StatusNotFound)
	ErrAddressNotFound       = New(4003, "地址不存在", http.StatusNotFound)
	ErrEntityAmenityExists   = New(4004, "设施已关联", http.StatusConflict)
	ErrEntityAmenityNotFound = New(4005, "设施关联不存在", http.StatusNotFound)
	ErrRoomInUse             = New(4006, "房间存在预订记录，无法删除", http.StatusConflict)
	ErrHotelInUse            = New(4007, "酒店下仍有房间，无法删除", http.StatusConflict)
	ErrAmenityExists         = New(4008, "设施名称已存在", http.StatusConflict)
)

// 工单错误码 (5000-5999)
var (
	ErrTicketNotFound = New(5000, "工单不存在", http.StatusNotFound)
)

// 支付错误码 (6000-6999)
var (
	ErrPaymentNotFound      = New(6000, "支付记录不存在", http.StatusNotFound)
	ErrPaymentAmountInvalid = New(6001, "无效的支付金额", http.StatusBadRequest)
	ErrCheckoutSessionFail  = New(6002, "创建支付会话失败", http.StatusBadGateway)
	ErrWebhookSignature     = New(6003, "回调签名校验失败", http.StatusBadRequest)
	ErrWebhookPayload       = New(6004, "回调数据不完整", http.StatusBadRequest)
	ErrPaymentNotRecorded   = New(6005, "支付记录尚未创建", http.StatusInternalServerError)
	ErrWebhookNotConfigured = New(6006, "支付回调未配置", http.StatusInternalServerError)
)

// 预订错误码 (8000-8999)
var (
	ErrBookingNotFound    = New(8000, "预订不存在", http.StatusNotFound)
	ErrBookingStatusError = New(8001, "预订状态异常", http.StatusConflict)
	ErrBookingConflict    = New(8002, "该房间在所选日期已被预订", http.StatusConflict)
	ErrRoomNotAvailable   = New(8004, "房间暂停预订", http.StatusConflict)
	ErrBookingNotPayable  = New(8005, "预订当前状态不可支付", http.StatusConflict)
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// Is 透传标准库 errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As 透传标准库 errors.As
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
