package book

import (
	"context"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务负责业务规则校验,再委托Repository持久化
// 2. 缓存、事件等横切关注点由应用层编排
type Service interface {
	// CreateBook 创建图书
	CreateBook(ctx context.Context, attrs Attributes) (*Book, error)

	// GetBook 根据ID获取图书详情
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 查询全部图书
	ListBooks(ctx context.Context) ([]*Book, error)

	// SearchBooks 条件搜索
	// 业务规则:分页参数缺省时取默认值,越界返回参数错误
	SearchBooks(ctx context.Context, criteria SearchCriteria) (*SearchResult, error)

	// UpdateBook 全量更新图书
	UpdateBook(ctx context.Context, id uint, attrs Attributes) (*Book, error)

	// DeleteBook 删除图书
	DeleteBook(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateBook(ctx context.Context, attrs Attributes) (*Book, error) {
	book, err := NewBook(attrs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	if id == 0 {
		return nil, ErrBookNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) SearchBooks(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	if err := criteria.Normalize(); err != nil {
		return nil, err
	}

	books, total, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return NewSearchResult(books, total, criteria), nil
}

// UpdateBook 先校验再查询,非法请求不访问数据库
func (s *service) UpdateBook(ctx context.Context, id uint, attrs Attributes) (*Book, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, ErrBookNotFound
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := book.Replace(attrs); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) DeleteBook(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrBookNotFound
	}
	return s.repo.Delete(ctx, id)
}
