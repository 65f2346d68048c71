package book

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/pkg/metrics"
	"github.com/xiebiao/booklibrary/pkg/response"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// SearchBooksUseCase 条件搜索图书
type SearchBooksUseCase struct {
	bookService book.Service
	cache       book.Cache
	log         *logrus.Logger
}

// NewSearchBooksUseCase 创建搜索用例
func NewSearchBooksUseCase(bookService book.Service, cache book.Cache, log *logrus.Logger) *SearchBooksUseCase {
	return &SearchBooksUseCase{bookService: bookService, cache: cache, log: log}
}

// SearchBooksRequest 搜索请求
// 指针字段为nil表示未提供该条件
type SearchBooksRequest struct {
	Title       string
	Description string
	Author      string
	Genre       string
	StartDate   *time.Time
	EndDate     *time.Time
	IsBorrowed  *bool
	MinPrice    *float64 // 元
	MaxPrice    *float64
	MinRating   *float64
	MaxRating   *float64
	SortBy      string
	PageNumber  int
	PageSize    int
}

// SearchBooksResponse 搜索响应
type SearchBooksResponse = response.PageData[BookDTO]

// Execute 执行搜索
func (uc *SearchBooksUseCase) Execute(ctx context.Context, req SearchBooksRequest) (resp *SearchBooksResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "SearchBooks")
	defer span.End()
	defer func() { record("search", err) }()

	criteria, err := req.criteria()
	if err != nil {
		return nil, err
	}
	if err := criteria.Normalize(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("search.sort", criteria.Sort.String()),
		attribute.Int("search.page_number", criteria.PageNumber),
		attribute.Int("search.page_size", criteria.PageSize),
	)

	key := criteria.CacheKey()
	gen, cacheable := cacheGeneration(ctx, uc.cache, uc.log)
	if cacheable {
		cached, cacheErr := uc.cache.GetSearch(ctx, gen, key)
		switch {
		case cacheErr == nil:
			metrics.RecordCache("search", "hit")
			return newSearchBooksResponse(cached), nil
		case errors.Is(cacheErr, book.ErrCacheMiss):
			metrics.RecordCache("search", "miss")
		default:
			metrics.RecordCache("search", "error")
			logEntry(uc.log, ctx).WithError(cacheErr).Warn("读取搜索缓存失败")
		}
	}

	result, err := uc.bookService.SearchBooks(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if cacheable {
		if err := uc.cache.SetSearch(ctx, gen, key, result); err != nil {
			logEntry(uc.log, ctx).WithError(err).Warn("写入搜索缓存失败")
		}
	}
	return newSearchBooksResponse(result), nil
}

func (req SearchBooksRequest) criteria() (book.SearchCriteria, error) {
	sort, err := book.ParseSort(req.SortBy)
	if err != nil {
		return book.SearchCriteria{}, err
	}

	c := book.SearchCriteria{
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Genre:       req.Genre,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsBorrowed:  req.IsBorrowed,
		MinRating:   req.MinRating,
		MaxRating:   req.MaxRating,
		Sort:        sort,
		PageNumber:  req.PageNumber,
		PageSize:    req.PageSize,
	}
	if req.MinPrice != nil {
		v := book.PriceFromDecimal(*req.MinPrice)
		c.MinPrice = &v
	}
	if req.MaxPrice != nil {
		v := book.PriceFromDecimal(*req.MaxPrice)
		c.MaxPrice = &v
	}
	return c, nil
}

func newSearchBooksResponse(r *book.SearchResult) *SearchBooksResponse {
	return response.NewPageData(newBookDTOs(r.Items), r.TotalItems, r.PageNumber, r.PageSize)
}
