package api

import (
	"errors"
	"net/http"

	"hisaab/config"
	"hisaab/middleware"
	"hisaab/models"
	"hisaab/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Response 通用响应结构
type Response struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       interface{}         `json:"data,omitempty"`
	Errors     []models.FieldError `json:"errors,omitempty"`
	Pagination *service.Pagination `json:"pagination,omitempty"`
}

// AuthResponse 注册/登录及资料接口的响应，token 与 user 位于顶层
type AuthResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	User    *models.Profile `json:"user,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 201 响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// ValidationFailed 400 字段校验错误
func ValidationFailed(c *gin.Context, errs []models.FieldError) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: service.MsgValidationFailed,
		Errors:  errs,
	})
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// RenderError 将服务层错误映射为状态码与响应体，未知错误记录日志并按 fallback 返回 500
func RenderError(c *gin.Context, err error, fallback string) {
	var (
		verr     *service.ValidationError
		notFound *service.NotFoundError
		conflict *service.ConflictError
		badReq   *service.BadRequestError
	)
	switch {
	case errors.As(err, &verr):
		ValidationFailed(c, verr.Errors)
	case errors.As(err, &notFound):
		NotFound(c, notFound.Message)
	case errors.As(err, &conflict):
		BadRequest(c, conflict.Message)
	case errors.As(err, &badReq):
		BadRequest(c, badReq.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		BadRequest(c, service.MsgBadCredentials)
	case errors.Is(err, service.ErrUnauthorized):
		Unauthorized(c, middleware.MsgInvalidToken)
	default:
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"user_id":    middleware.GetCurrentUserID(c),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error(fallback)
		InternalError(c, config.SafeErrorMessage(err, fallback))
	}
}
