package book

import (
	"errors"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	ErrTitleRequired  = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")
	ErrTitleTooLong   = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能超过200个字符")
	ErrAuthorRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不能为空")
	ErrAuthorTooLong  = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不能超过100个字符")
	ErrGenreTooLong   = apperrors.New(apperrors.ErrCodeInvalidParams, "类型不能超过50个字符")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrInvalidRating 无效的评分
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须在0到5之间")

	// ErrInvalidSort 排序字段非法
	ErrInvalidSort = apperrors.New(apperrors.ErrCodeInvalidSort, "不支持的排序字段")

	ErrInvalidPageNumber = apperrors.New(apperrors.ErrCodeInvalidParams, "pageNumber必须大于等于1")
	ErrInvalidPageSize   = apperrors.New(apperrors.ErrCodeInvalidParams, "pageSize必须在1到100之间")
)

// ErrCacheMiss 缓存未命中(不是错误,由Cache实现返回给调用方区分)
var ErrCacheMiss = errors.New("book cache miss")
