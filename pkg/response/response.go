package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. HTTP状态码遵循REST语义（200/201/400/404...）
// 2. Code是业务错误码，0表示成功，方便客户端细分错误类型
// 3. Data是业务数据，成功时返回，失败时省略
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// loggerKey 请求日志器在gin.Context中的键（由日志中间件写入）
const loggerKey = "logger"

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应（201），location为新资源地址
func Created(c *gin.Context, location string, data interface{}) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// NoContent 无内容响应（204）
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	book, err := uc.Execute(ctx, id)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	// 记录内部错误，不返回给客户端
	if appErr.Err != nil || status >= http.StatusInternalServerError {
		entry := Logger(c).WithField("code", appErr.Code)
		if appErr.Err != nil {
			entry = entry.WithError(appErr.Err)
		}
		entry.Error(appErr.Message)
	}
	_ = c.Error(err)

	c.AbortWithStatusJSON(status, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// BindError 参数绑定失败响应（400）
func BindError(c *gin.Context, err error) {
	Error(c, apperrors.ErrBindError.WithMessage("参数错误: "+err.Error()))
}

// SetLogger 将请求级日志器写入Context
func SetLogger(c *gin.Context, entry *logrus.Entry) {
	c.Set(loggerKey, entry)
}

// Logger 获取请求级日志器，未设置时返回标准日志器
func Logger(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData[T any] struct {
	TotalItems int64 `json:"totalItems"` // 总记录数
	PageNumber int   `json:"pageNumber"` // 当前页码
	PageSize   int   `json:"pageSize"`   // 每页大小
	TotalPages int   `json:"totalPages"` // 总页数
	Items      []T   `json:"items"`      // 数据列表,空页为[]而非null
}

// NewPageData 创建分页数据
func NewPageData[T any](items []T, total int64, page, pageSize int) *PageData[T] {
	if items == nil {
		items = []T{}
	}
	return &PageData[T]{
		TotalItems: total,
		PageNumber: page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
		Items:      items,
	}
}

// TotalPages 向上取整计算总页数
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}
