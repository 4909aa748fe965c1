// Package errors 错误码和错误处理单元测试
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== AppError 基础测试 ====================

func TestNew(t *testing.T) {
	err := New(1001, "参数错误", http.StatusBadRequest)
	require.NotNil(t, err)
	assert.Equal(t, 1001, err.Code)
	assert.Equal(t, "参数错误", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Nil(t, err.Err)
}

func TestNew_DefaultStatus(t *testing.T) {
	err := New(1000, "未知错误")
	assert.Equal(t, http.StatusInternalServerError, err.Status())
}

func TestWrap(t *testing.T) {
	originalErr := stderrors.New("database connection failed")
	err := Wrap(1004, "数据库错误", originalErr)

	require.NotNil(t, err)
	assert.Equal(t, 1004, err.Code)
	assert.Equal(t, originalErr, err.Err)
	assert.Equal(t, http.StatusInternalServerError, err.Status())
}

// ==================== AppError 方法测试 ====================

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{"Error without underlying error", New(1001, "参数错误"), "[1001] 参数错误"},
		{"Error with underlying error", Wrap(1004, "数据库错误", stderrors.New("connection timeout")), "[1004] 数据库错误: connection timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appError.Error())
		})
	}
}

func TestAppError_WithMessage(t *testing.T) {
	modified := ErrBookingConflict.WithMessage("房间 7 已被预订")

	assert.Equal(t, ErrBookingConflict.Code, modified.Code)
	assert.Equal(t, http.StatusConflict, modified.HTTPStatus)
	assert.Equal(t, "房间 7 已被预订", modified.Message)
	assert.Equal(t, "该房间在所选日期已被预订", ErrBookingConflict.Message)
}

func TestAppError_WithError(t *testing.T) {
	underlyingErr := stderrors.New("validation failed")
	modified := ErrInvalidParams.WithError(underlyingErr)

	assert.Equal(t, 1001, modified.Code)
	assert.Equal(t, http.StatusBadRequest, modified.Status())
	assert.Equal(t, underlyingErr, modified.Err)
	assert.Nil(t, ErrInvalidParams.Err)
}

func TestAppError_Is(t *testing.T) {
	t.Run("派生错误与哨兵相等", func(t *testing.T) {
		err := ErrBookingConflict.WithError(stderrors.New("23P01"))
		assert.True(t, stderrors.Is(err, ErrBookingConflict))
		assert.False(t, stderrors.Is(err, ErrRoomNotAvailable))
	})

	t.Run("多层包装仍可识别", func(t *testing.T) {
		err := fmt.Errorf("create booking: %w", ErrRoomNotFound)
		assert.True(t, Is(err, ErrRoomNotFound))
	})
}

// ==================== 错误码与状态码测试 ====================

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"参数错误", ErrInvalidParams, http.StatusBadRequest},
		{"日期无效", ErrInvalidDate, http.StatusBadRequest},
		{"日期区间无效", ErrInvalidRange, http.StatusBadRequest},
		{"房间不存在", ErrRoomNotFound, http.StatusNotFound},
		{"预订不存在", ErrBookingNotFound, http.StatusNotFound},
		{"预订冲突", ErrBookingConflict, http.StatusConflict},
		{"房间暂停预订", ErrRoomNotAvailable, http.StatusConflict},
		{"签名错误", ErrWebhookSignature, http.StatusBadRequest},
		{"支付记录未创建", ErrPaymentNotRecorded, http.StatusInternalServerError},
		{"数据库错误", ErrDatabaseError, http.StatusInternalServerError},
		{"未登录", ErrUnauthorized, http.StatusUnauthorized},
		{"权限不足", ErrPermissionDenied, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status())
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrorCodesAreDistinct(t *testing.T) {
	all := []*AppError{
		ErrInvalidDate, ErrInvalidRange, ErrRoomNotFound, ErrRoomNotAvailable,
		ErrBookingConflict, ErrBookingNotFound, ErrWebhookSignature, ErrWebhookPayload,
		ErrPaymentNotRecorded, ErrPaymentNotFound, ErrDatabaseError,
	}
	seen := make(map[int]bool)
	for _, e := range all {
		assert.False(t, seen[e.Code], "duplicate code %d", e.Code)
		seen[e.Code] = true
	}
}

// ==================== 辅助函数测试 ====================

func TestIsAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"AppError", ErrUnknown, true},
		{"Wrapped AppError", fmt.Errorf("wrap: %w", ErrNotFound), true},
		{"Standard error", stderrors.New("standard error"), false},
		{"Nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAppError(tt.err))
		})
	}
}

func TestGetAppError(t *testing.T) {
	t.Run("From AppError", func(t *testing.T) {
		got := GetAppError(ErrInvalidParams)
		assert.Equal(t, ErrInvalidParams, got)
	})

	t.Run("From standard error", func(t *testing.T) {
		standardErr := stderrors.New("standard error")
		got := GetAppError(standardErr)

		assert.Equal(t, ErrUnknown.Code, got.Code)
		assert.Equal(t, standardErr, got.Err)
	})
}
