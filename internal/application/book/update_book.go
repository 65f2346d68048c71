package book

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// UpdateBookUseCase 全量更新图书
// 查询和更新在同一事务内完成,提交后再失效缓存、发布事件
type UpdateBookUseCase struct {
	bookService book.Service
	tx          Transactor
	effects     sideEffects
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, tx Transactor, cache book.Cache, publisher book.EventPublisher, log *logrus.Logger) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		tx:          tx,
		effects:     sideEffects{cache: cache, publisher: publisher, log: log},
	}
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, in BookInput) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateBook")
	span.SetAttributes(attribute.Int64("book.id", int64(id)))
	defer span.End()
	defer func() { record("update", err) }()

	var updated *book.Book
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := uc.bookService.UpdateBook(ctx, id, in.attributes())
		if err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	uc.effects.invalidate(ctx, id)
	uc.effects.publish(ctx, book.NewEvent(book.EventUpdated, id, updated))
	return nil
}
