// Package response 提供统一的 HTTP JSON 响应封装
package response

import (
	"errors"
	"net/http"

	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// Body 统一响应体
type Body struct {
	Code    string            `json:"code"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success 返回 200
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Code: "ok", Data: data})
}

// Created 返回 201
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Body{Code: "created", Data: data})
}

// NoContent 返回 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 按错误分类返回对应状态码与结构化错误体
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.JSON(statusOf(kind), Body{
		Code:    kind.String(),
		Message: messageOf(err),
		Fields:  apperr.FieldsOf(err),
	})
}

// ErrorWithStatus 返回指定状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Code: codeOfStatus(status), Message: message})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	// 未分类错误不向外泄露细节
	return "internal server error"
}

func codeOfStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusConflict:
		return "conflict"
	default:
		return "error"
	}
}
