package book

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockRepository Repository的testify mock
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, b *Book) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 1
	}
	return args.Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id uint) (*Book, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*Book); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindAll(ctx context.Context) ([]*Book, error) {
	args := m.Called(ctx)
	books, _ := args.Get(0).([]*Book)
	return books, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, b *Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) Search(ctx context.Context, c SearchCriteria) ([]*Book, int64, error) {
	args := m.Called(ctx, c)
	books, _ := args.Get(0).([]*Book)
	return books, args.Get(1).(int64), args.Error(2)
}

func TestService_CreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("成功", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*book.Book")).Return(nil)

		b, err := NewService(repo).CreateBook(ctx, validAttrs())
		require.NoError(t, err)
		assert.Equal(t, uint(1), b.ID)
		repo.AssertExpectations(t)
	})

	t.Run("校验失败不访问仓储", func(t *testing.T) {
		repo := new(mockRepository)
		attrs := validAttrs()
		attrs.Author = ""

		_, err := NewService(repo).CreateBook(ctx, attrs)
		assert.ErrorIs(t, err, ErrAuthorRequired)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_UpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("全量更新", func(t *testing.T) {
		existing, _ := NewBook(validAttrs())
		existing.ID = 7

		repo := new(mockRepository)
		repo.On("FindByID", ctx, uint(7)).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		attrs := Attributes{Title: "Dune", Author: "Frank Herbert", Price: 1000, Rating: 4}
		b, err := NewService(repo).UpdateBook(ctx, 7, attrs)
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Title)
		assert.Equal(t, "", b.Genre)
		repo.AssertExpectations(t)
	})

	t.Run("图书不存在", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", ctx, uint(99)).Return(nil, ErrBookNotFound)

		_, err := NewService(repo).UpdateBook(ctx, 99, validAttrs())
		assert.ErrorIs(t, err, ErrBookNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("非法属性优先于不存在", func(t *testing.T) {
		repo := new(mockRepository)
		attrs := validAttrs()
		attrs.Rating = 9

		_, err := NewService(repo).UpdateBook(ctx, 99, attrs)
		assert.ErrorIs(t, err, ErrInvalidRating)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestService_SearchBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("填充默认值后查询", func(t *testing.T) {
		repo := new(mockRepository)
		books := []*Book{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}
		repo.On("Search", ctx, mock.MatchedBy(func(c SearchCriteria) bool {
			return c.PageNumber == 1 && c.PageSize == 10 && c.Sort == DefaultSort
		})).Return(books, int64(12), nil)

		result, err := NewService(repo).SearchBooks(ctx, SearchCriteria{})
		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
		assert.Equal(t, int64(12), result.TotalItems)
		assert.Equal(t, 2, result.TotalPages)
	})

	t.Run("分页越界", func(t *testing.T) {
		repo := new(mockRepository)
		_, err := NewService(repo).SearchBooks(ctx, SearchCriteria{PageSize: 1000})
		assert.ErrorIs(t, err, ErrInvalidPageSize)
	})

	t.Run("仓储错误透传", func(t *testing.T) {
		repo := new(mockRepository)
		dbErr := errors.New("connection refused")
		repo.On("Search", ctx, mock.Anything).Return(nil, int64(0), dbErr)

		_, err := NewService(repo).SearchBooks(ctx, SearchCriteria{})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestService_GetAndDelete_ZeroID(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	_, err := svc.GetBook(context.Background(), 0)
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.ErrorIs(t, svc.DeleteBook(context.Background(), 0), ErrBookNotFound)
	repo.AssertExpectations(t)
}
