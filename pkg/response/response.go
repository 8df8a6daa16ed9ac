package response

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Response 统一响应结构
// 所有拒绝原因共用同一结构与响应码,仅 Message 不同
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Success  bool        `json:"success"`
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// 响应码定义
const (
	CodeSuccess       = 0
	CodeError         = 1
	CodeUnauthorized  = 401
	CodeValidateError = 422
	CodeTooMany       = 429
	CodeServerError   = 500
)

// 响应消息定义
const (
	MsgSuccess     = "操作成功"
	MsgServerError = "服务器内部错误"
)

// Success 成功响应
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(http.StatusOK).JSON(Response{
		Success: true,
		Code:    CodeSuccess,
		Message: MsgSuccess,
		Data:    data,
	})
}

// SuccessPage 分页成功响应
func SuccessPage(c *fiber.Ctx, data interface{}, total int64, page, pageSize int) error {
	return c.Status(http.StatusOK).JSON(PageResponse{
		Success:  true,
		Code:     CodeSuccess,
		Message:  MsgSuccess,
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Error 错误响应,HTTP 状态恒为 200,错误体现在 code 上
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(http.StatusOK).JSON(Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// Deny 访问控制拒绝响应
func Deny(c *fiber.Ctx, message string) error {
	return Error(c, CodeUnauthorized, message)
}

// ValidateError 验证错误
func ValidateError(c *fiber.Ctx, message string) error {
	return Error(c, CodeValidateError, message)
}

// ServerError 服务器错误
func ServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = MsgServerError
	}
	return Error(c, CodeServerError, message)
}
