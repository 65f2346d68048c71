package book

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/pkg/metrics"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// GetBookUseCase 查询图书详情
// 缓存策略(Cache-Aside):
// 1. 先读缓存,命中直接返回
// 2. 未命中查数据库,再回填缓存
// 3. 缓存故障时直接查数据库
// 4. 回填使用查询前读取的代号,期间有写操作则放弃回填
type GetBookUseCase struct {
	bookService book.Service
	cache       book.Cache
	log         *logrus.Logger
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service, cache book.Cache, log *logrus.Logger) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, cache: cache, log: log}
}

// Execute 执行详情查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (dto *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetBook")
	span.SetAttributes(attribute.Int64("book.id", int64(id)))
	defer span.End()
	defer func() { record("get", err) }()

	gen, cacheable := cacheGeneration(ctx, uc.cache, uc.log)
	if cacheable && id != 0 {
		cached, cacheErr := uc.cache.Get(ctx, id)
		switch {
		case cacheErr == nil:
			metrics.RecordCache("book", "hit")
			out := NewBookDTO(cached)
			return &out, nil
		case errors.Is(cacheErr, book.ErrCacheMiss):
			metrics.RecordCache("book", "miss")
		default:
			metrics.RecordCache("book", "error")
			logEntry(uc.log, ctx).WithError(cacheErr).Warn("读取图书缓存失败")
		}
	}

	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if cacheable {
		if err := uc.cache.Set(ctx, gen, b); err != nil {
			logEntry(uc.log, ctx).WithError(err).Warn("写入图书缓存失败")
		}
	}

	out := NewBookDTO(b)
	return &out, nil
}
