// Package handler 提供 API Handler 的通用辅助函数
// 统一错误处理、认证检查、参数解析与分页
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/common/validator"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
)

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false；否则发送错误响应并返回 true，调用方应该 return
//
//	result, err := service.DoSomething()
//	if HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if msg := validator.Translate(err); msg != "" {
		response.Error(c, errors.ErrInvalidParams.Status(), errors.ErrInvalidParams.Code, msg)
		return true
	}
	if errors.IsAppError(err) {
		appErr := errors.GetAppError(err)
		if appErr.Status() >= 500 {
			logger.Error("request failed",
				zap.String("path", c.FullPath()),
				logger.RequestID(middleware.GetRequestID(c)),
				zap.Error(err),
			)
		}
		response.Error(c, appErr.Status(), appErr.Code, appErr.Message)
		return true
	}
	logger.Error("unexpected error",
		zap.String("path", c.FullPath()),
		logger.RequestID(middleware.GetRequestID(c)),
		zap.Error(err),
	)
	response.InternalError(c, "服务器内部错误")
	return true
}

// BindJSON 绑定并校验请求体，失败时发送 400 并返回 false
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if msg := validator.Translate(err); msg != "" {
			response.BadRequest(c, msg)
		} else {
			response.BadRequest(c, "请求体格式错误")
		}
		return false
	}
	return true
}

// BindQuery 绑定并校验查询参数
func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		if msg := validator.Translate(err); msg != "" {
			response.BadRequest(c, msg)
		} else {
			response.BadRequest(c, "参数错误")
		}
		return false
	}
	return true
}

// MustSucceed 如果有错误则返回错误响应，否则返回成功响应；调用后必须 return
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustCreate 创建类接口，成功返回 201
func MustCreate(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Created(c, data)
}

// MustSucceedPage 分页响应版本
//
//	list, total, err := service.List(ctx, p.GetOffset(), p.GetLimit())
//	MustSucceedPage(c, err, list, total, p)
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, p utils.Pagination) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, p.Page, p.PageSize)
}

// RequireUserID 获取当前用户ID，如果未登录则返回401响应
func RequireUserID(c *gin.Context) (int64, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "请先登录")
		return 0, false
	}
	return userID, true
}

// ParseID 解析路径参数 "id" 为 int64，失败时已发送 400
//
//	id, ok := handler.ParseID(c, "预订")
//	if !ok {
//	    return
//	}
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为正整数 ID
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ParseQueryID 解析查询参数中的可选 ID
// 参数为空返回 (nil, true)；解析失败返回 (nil, false) 并已发送 400
func ParseQueryID(c *gin.Context, paramName, resourceName string) (*int64, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return nil, false
	}
	return &id, true
}

// BindPagination 从查询参数绑定并规范化分页参数
// 页大小取 limit，兼容 page_size；默认 page=1, limit=10，上限 100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size := c.Query("limit")
	if size == "" {
		size = c.DefaultQuery("page_size", "10")
	}
	p.PageSize, _ = strconv.Atoi(size)
	p.Normalize()
	return p
}
