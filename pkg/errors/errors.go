package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，前三位与HTTP状态码一致（如40401 → 404）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 根据业务错误码推导HTTP状态码
// 规则：错误码除以100即为HTTP状态码，无法识别时返回500
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < 400 || status > 599 || http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WithMessage 基于预定义错误生成带具体描述的新错误（不修改原错误）
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithCause 基于预定义错误附加内部原因（不修改原错误）
// 用于保留业务错误码的同时记录底层错误，如:
//
//	apperrors.ErrCacheError.WithCause(err)
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：错误码 = HTTP状态码 * 100 + 序号
// - 400xx: 参数错误
// - 401xx: 认证错误
// - 404xx: 资源不存在
// - 409xx: 资源冲突
// - 429xx: 请求过于频繁
// - 500xx/503xx: 服务端错误

const (
	// 参数错误（40000-40099）
	ErrCodeInvalidParams      = 40000 // 参数错误(通用)
	ErrCodeBindError          = 40001 // 参数绑定失败
	ErrCodeInvalidSort        = 40002 // 排序字段非法
	ErrCodeUnsupportedVersion = 40003 // 不支持的API版本
	ErrCodeMissingCredentials = 40004 // 缺少用户名或密码

	// 认证错误（40100-40199）
	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidToken       = 40101 // Token无效
	ErrCodeTokenExpired       = 40102 // Token过期
	ErrCodeInvalidCredentials = 40103 // 用户名或密码错误
	ErrCodeTokenRevoked       = 40104 // Token已注销

	// 资源不存在（40400-40499）
	ErrCodeNotFound     = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound = 40401 // 图书不存在
	ErrCodeUserNotFound = 40402 // 用户不存在

	// 资源冲突（40900-40999）
	ErrCodeUsernameDuplicate = 40901 // 用户名已存在

	// 限流（42900-42999）
	ErrCodeTooManyRequests = 42900

	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeCacheError    = 50002 // 缓存错误

	// 依赖不可用（50300-50399）
	ErrCodeUnavailable = 50300
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrCacheError    = New(ErrCodeCacheError, "缓存服务错误")
	ErrUnavailable   = New(ErrCodeUnavailable, "服务暂不可用")

	// 认证授权
	ErrUnauthorized       = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "用户名或密码错误")
	ErrTokenRevoked       = New(ErrCodeTokenRevoked, "Token已失效，请重新登录")

	// 资源不存在
	ErrNotFound     = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 冲突
	ErrUsernameDuplicate = New(ErrCodeUsernameDuplicate, "用户名已存在")

	// 参数错误
	ErrInvalidParams      = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError          = New(ErrCodeBindError, "参数格式错误")
	ErrMissingCredentials = New(ErrCodeMissingCredentials, "Username and password are required.")
	ErrUnsupportedVersion = New(ErrCodeUnsupportedVersion, "UnsupportedApiVersion")

	// 限流
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "请求过于频繁，请稍后再试")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HasCode 判断错误链中是否包含指定错误码
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
