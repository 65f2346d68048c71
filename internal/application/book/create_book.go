package book

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// CreateBookUseCase 创建图书
// 流程:领域服务校验并入库 -> 搜索缓存失效 -> 发布book.created事件
type CreateBookUseCase struct {
	bookService book.Service
	effects     sideEffects
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service, cache book.Cache, publisher book.EventPublisher, log *logrus.Logger) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		effects:     sideEffects{cache: cache, publisher: publisher, log: log},
	}
}

// Execute 执行创建
func (uc *CreateBookUseCase) Execute(ctx context.Context, in BookInput) (dto *BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateBook")
	defer span.End()
	defer func() { record("create", err) }()

	b, err := uc.bookService.CreateBook(ctx, in.attributes())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.effects.invalidate(ctx, 0)
	uc.effects.publish(ctx, book.NewEvent(book.EventCreated, b.ID, b))

	out := NewBookDTO(b)
	return &out, nil
}
