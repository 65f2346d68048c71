package orm

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/internal/infrastructure/config"
)

// newTestDB 创建SQLite内存库(每个测试独立)
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			Path:        ":memory:",
			AutoMigrate: true,
		},
	}
	db, cleanup, err := NewDB(cfg, log)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func seedBooks(t *testing.T, repo book.Repository) []*book.Book {
	t.Helper()
	books := []*book.Book{
		{Title: "The Go Programming Language", Author: "Alan Donovan", Genre: "Programming",
			PublicationDate: date(2015, 11, 5), Price: 3999, Rating: 4.7},
		{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction",
			PublicationDate: date(1965, 8, 1), Price: 999, Rating: 4.5, IsBorrowed: true},
		{Title: "Neuromancer", Author: "William Gibson", Genre: "Science Fiction",
			PublicationDate: date(1984, 7, 1), Price: 1450, Rating: 4.1},
		{Title: "100% Go", Description: "literal percent sign", Author: "Anonymous", Genre: "Programming",
			PublicationDate: date(2020, 1, 1), Price: 500, Rating: 3.2},
		{Title: "Concurrency in Go", Author: "Katherine Cox-Buday", Genre: "Programming",
			PublicationDate: date(2017, 7, 1), Price: 3500, Rating: 4.4, IsBorrowed: true},
	}
	for _, b := range books {
		require.NoError(t, repo.Create(context.Background(), b))
	}
	return books
}

func TestBookRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(newTestDB(t))

	b := &book.Book{
		Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction",
		PublicationDate: date(1965, 8, 1), Price: 999, Rating: 4.5,
	}

	t.Run("创建并回填ID", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, b))
		assert.NotZero(t, b.ID)
		assert.False(t, b.CreatedAt.IsZero())
	})

	t.Run("根据ID查询", func(t *testing.T) {
		got, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
		assert.Equal(t, int64(999), got.Price)
		assert.True(t, got.PublicationDate.Equal(date(1965, 8, 1)))
	})

	t.Run("全量更新写入零值", func(t *testing.T) {
		b.Genre = ""
		b.Price = 0
		b.Rating = 0
		b.IsBorrowed = true
		require.NoError(t, repo.Update(ctx, b))

		got, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "", got.Genre)
		assert.Equal(t, int64(0), got.Price)
		assert.Equal(t, 0.0, got.Rating)
		assert.True(t, got.IsBorrowed)
	})

	t.Run("删除后查询不到", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, b.ID))

		_, err := repo.FindByID(ctx, b.ID)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("删除不存在的图书", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, 9999), book.ErrBookNotFound)
	})
}

func TestBookRepository_FindAll(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	empty, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	seeded := seedBooks(t, repo)
	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, len(seeded))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID, "应按ID升序")
	}
}

func TestBookRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(newTestDB(t))
	seedBooks(t, repo)

	search := func(t *testing.T, c book.SearchCriteria) ([]*book.Book, int64) {
		t.Helper()
		require.NoError(t, c.Normalize())
		books, total, err := repo.Search(ctx, c)
		require.NoError(t, err)
		return books, total
	}
	titles := func(books []*book.Book) []string {
		out := make([]string, len(books))
		for i, b := range books {
			out[i] = b.Title
		}
		return out
	}

	t.Run("无条件按书名升序", func(t *testing.T) {
		books, total := search(t, book.SearchCriteria{})
		assert.Equal(t, int64(5), total)
		assert.Equal(t, []string{"100% Go", "Concurrency in Go", "Dune", "Neuromancer", "The Go Programming Language"}, titles(books))
	})

	t.Run("书名大小写不敏感", func(t *testing.T) {
		books, total := search(t, book.SearchCriteria{Title: "GO"})
		assert.Equal(t, int64(3), total)
		assert.Len(t, books, 3)
	})

	t.Run("通配符按字面匹配", func(t *testing.T) {
		books, _ := search(t, book.SearchCriteria{Title: "100%"})
		assert.Equal(t, []string{"100% Go"}, titles(books))

		books, _ = search(t, book.SearchCriteria{Title: "_"})
		assert.Empty(t, books)
	})

	t.Run("多条件组合", func(t *testing.T) {
		books, _ := search(t, book.SearchCriteria{Genre: "programming", IsBorrowed: ptr(false)})
		assert.Equal(t, []string{"100% Go", "The Go Programming Language"}, titles(books))
	})

	t.Run("日期区间需要起止同时给出", func(t *testing.T) {
		start, end := date(1960, 1, 1), date(1984, 7, 1)

		books, _ := search(t, book.SearchCriteria{StartDate: &start, EndDate: &end})
		assert.ElementsMatch(t, []string{"Dune", "Neuromancer"}, titles(books), "结束日期包含当天")

		_, total := search(t, book.SearchCriteria{StartDate: &start})
		assert.Equal(t, int64(5), total, "只给起始日期时不过滤")
	})

	t.Run("价格与评分区间", func(t *testing.T) {
		books, _ := search(t, book.SearchCriteria{MinPrice: ptr(int64(999)), MaxPrice: ptr(int64(3500))})
		assert.Equal(t, []string{"Concurrency in Go", "Dune", "Neuromancer"}, titles(books))

		books, _ = search(t, book.SearchCriteria{MinRating: ptr(4.5)})
		assert.Equal(t, []string{"Dune", "The Go Programming Language"}, titles(books))
	})

	t.Run("降序排序", func(t *testing.T) {
		books, _ := search(t, book.SearchCriteria{Sort: book.Sort{Field: book.SortByPrice, Desc: true}})
		assert.Equal(t, "The Go Programming Language", books[0].Title)
		assert.Equal(t, "100% Go", books[4].Title)
	})

	t.Run("分页与总数", func(t *testing.T) {
		books, total := search(t, book.SearchCriteria{PageNumber: 2, PageSize: 2})
		assert.Equal(t, int64(5), total, "总数是过滤后的总数而非当前页数量")
		assert.Equal(t, []string{"Dune", "Neuromancer"}, titles(books))

		books, total = search(t, book.SearchCriteria{PageNumber: 10, PageSize: 2})
		assert.Equal(t, int64(5), total)
		assert.Empty(t, books)
	})

	t.Run("非ASCII字符", func(t *testing.T) {
		nino := &book.Book{Title: "EL NIÑO", Author: "Anónimo", PublicationDate: date(2001, 1, 1), Price: 100, Rating: 3}
		require.NoError(t, repo.Create(ctx, nino))
		defer func() { require.NoError(t, repo.Delete(ctx, nino.ID)) }()

		books, _ := search(t, book.SearchCriteria{Title: "NIÑO"})
		assert.Equal(t, []string{"EL NIÑO"}, titles(books), "与存储值大小写一致时命中")

		books, _ = search(t, book.SearchCriteria{Title: "el ni"})
		assert.Equal(t, []string{"EL NIÑO"}, titles(books))

		books, _ = search(t, book.SearchCriteria{Title: "niño"})
		assert.Empty(t, books, "SQLite只对ASCII字母忽略大小写")
	})

	t.Run("页码极大时返回空页", func(t *testing.T) {
		books, total := search(t, book.SearchCriteria{PageNumber: math.MaxInt/100 + 2, PageSize: 100})
		assert.Equal(t, int64(5), total)
		assert.Empty(t, books, "偏移量溢出不能回绕到第一页")
	})

	t.Run("无匹配", func(t *testing.T) {
		books, total := search(t, book.SearchCriteria{Author: "nobody"})
		assert.Equal(t, int64(0), total)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})
}

func TestTxManager_Rollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBookRepository(db)
	tx := NewTxManager(db)

	errAbort := errors.New("abort")
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, &book.Book{Title: "Temp", Author: "Nobody"}); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "事务回滚后不应有数据")

	err = tx.Transaction(ctx, func(ctx context.Context) error {
		return repo.Create(ctx, &book.Book{Title: "Kept", Author: "Somebody"})
	})
	require.NoError(t, err)

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
