package book

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/metrics"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

const tracerName = "booklibrary/application/book"

// Transactor 事务边界(由orm.TxManager实现)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// sideEffects 写操作之后的缓存失效和事件发布
// 两者失败都只记录日志,不影响请求结果
type sideEffects struct {
	cache     book.Cache
	publisher book.EventPublisher
	log       *logrus.Logger
}

// invalidate 须在写操作提交之后调用
func (s sideEffects) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.entry(ctx).WithError(err).WithField("book_id", id).Warn("刷新图书缓存失败")
	}
}

func (s sideEffects) publish(ctx context.Context, event book.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.entry(ctx).WithError(err).WithFields(logrus.Fields{
			"event":   string(event.Type),
			"book_id": event.BookID,
		}).Warn("发布图书事件失败")
	}
}

// cacheGeneration 在查询数据库之前读取缓存代号
// 读取失败时ok为false,本次请求既不读也不回填缓存
func cacheGeneration(ctx context.Context, cache book.Cache, log *logrus.Logger) (gen int64, ok bool) {
	gen, err := cache.Generation(ctx)
	if err != nil {
		logEntry(log, ctx).WithError(err).Warn("读取缓存代号失败")
		return 0, false
	}
	return gen, true
}

func (s sideEffects) entry(ctx context.Context) *logrus.Entry {
	return logEntry(s.log, ctx)
}

func logEntry(log *logrus.Logger, ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(log)
	if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	return entry
}

// record 记录操作结果指标
func record(operation string, err error) {
	metrics.RecordBookOperation(operation, resultOf(err))
}

// resultOf 将错误归类为指标标签
func resultOf(err error) string {
	if err == nil {
		return "success"
	}
	switch apperrors.GetAppError(err).HTTPStatus() {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest:
		return "invalid"
	default:
		return "error"
	}
}
