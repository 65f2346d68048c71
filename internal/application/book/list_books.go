package book

import (
	"context"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// ListBooksUseCase 查询全部图书
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// Execute 按ID升序返回全部图书,无数据时返回空切片
func (uc *ListBooksUseCase) Execute(ctx context.Context) (list []BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListBooks")
	defer span.End()
	defer func() { record("list", err) }()

	books, err := uc.bookService.ListBooks(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return newBookDTOs(books), nil
}
