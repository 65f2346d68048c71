package book

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// DeleteBookUseCase 删除图书(物理删除)
type DeleteBookUseCase struct {
	bookService book.Service
	effects     sideEffects
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, cache book.Cache, publisher book.EventPublisher, log *logrus.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		effects:     sideEffects{cache: cache, publisher: publisher, log: log},
	}
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteBook")
	span.SetAttributes(attribute.Int64("book.id", int64(id)))
	defer span.End()
	defer func() { record("delete", err) }()

	if err := uc.bookService.DeleteBook(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	uc.effects.invalidate(ctx, id)
	uc.effects.publish(ctx, book.NewEvent(book.EventDeleted, id, nil))
	return nil
}
