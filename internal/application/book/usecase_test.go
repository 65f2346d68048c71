package book

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// fakeRepository 内存仓储,记录调用次数
type fakeRepository struct {
	mu          sync.Mutex
	books       map[uint]*book.Book
	nextID      uint
	findCalls   int
	searchCalls int

	// 读到快照之后、返回之前调用,用于构造读写交错
	onFind   func()
	onSearch func()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{books: make(map[uint]*book.Book), nextID: 1}
}

func (r *fakeRepository) Create(_ context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.nextID
	r.nextID++
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepository) FindByID(_ context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	r.findCalls++
	hook := r.onFind
	b, ok := r.books[id]
	var cp book.Book
	if ok {
		cp = *b
	}
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return &cp, nil
}

func (r *fakeRepository) FindAll(_ context.Context) ([]*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*book.Book, 0, len(r.books))
	for _, b := range r.books {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepository) Update(_ context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *fakeRepository) Search(ctx context.Context, _ book.SearchCriteria) ([]*book.Book, int64, error) {
	r.mu.Lock()
	r.searchCalls++
	hook := r.onSearch
	r.mu.Unlock()
	all, _ := r.FindAll(ctx)
	if hook != nil {
		hook()
	}
	return all, int64(len(all)), nil
}

func (r *fakeRepository) setHooks(onFind, onSearch func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFind = onFind
	r.onSearch = onSearch
}

// brokenCache 所有操作都失败的缓存
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Generation(context.Context) (int64, error)     { return 0, errCacheDown }
func (brokenCache) Get(context.Context, uint) (*book.Book, error) { return nil, errCacheDown }
func (brokenCache) Set(context.Context, int64, *book.Book) error  { return errCacheDown }
func (brokenCache) GetSearch(context.Context, int64, string) (*book.SearchResult, error) {
	return nil, errCacheDown
}
func (brokenCache) SetSearch(context.Context, int64, string, *book.SearchResult) error {
	return errCacheDown
}
func (brokenCache) Invalidate(context.Context, uint) error { return errCacheDown }

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e book.Event) error {
	return m.Called(ctx, e).Error(0)
}

// directTx 直接执行回调的Transactor
type directTx struct{ calls int }

func (d *directTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	d.calls++
	return fn(ctx)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newCache() book.Cache {
	return memory.NewBookCache(100, time.Minute, time.Minute)
}

func duneInput() BookInput {
	return BookInput{
		Title:           "Dune",
		Author:          "Frank Herbert",
		Genre:           "Science Fiction",
		PublicationDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
		Price:           19.99,
		Rating:          4.5,
	}
}

func eventOfType(t book.EventType) interface{} {
	return mock.MatchedBy(func(e book.Event) bool { return e.Type == t })
}

func TestCreateBookUseCase(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, eventOfType(book.EventCreated)).Return(nil)

	uc := NewCreateBookUseCase(book.NewService(repo), newCache(), pub, quietLogger())
	dto, err := uc.Execute(ctx, duneInput())
	require.NoError(t, err)

	assert.Equal(t, uint(1), dto.ID)
	assert.Equal(t, 19.99, dto.Price)
	assert.Equal(t, "1965-08-01", dto.PublicationDate)
	assert.Equal(t, int64(1999), repo.books[1].Price)
	pub.AssertExpectations(t)

	t.Run("校验失败不发布事件", func(t *testing.T) {
		pub := new(mockPublisher)
		uc := NewCreateBookUseCase(book.NewService(repo), newCache(), pub, quietLogger())

		in := duneInput()
		in.Title = "  "
		_, err := uc.Execute(ctx, in)
		assert.ErrorIs(t, err, book.ErrTitleRequired)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("事件发布失败不影响结果", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
		uc := NewCreateBookUseCase(book.NewService(repo), brokenCache{}, pub, quietLogger())

		_, err := uc.Execute(ctx, duneInput())
		assert.NoError(t, err)
	})
}

func TestGetBookUseCase_CacheAside(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := book.NewService(repo)
	cache := newCache()

	created, err := svc.CreateBook(ctx, duneInput().attributes())
	require.NoError(t, err)

	uc := NewGetBookUseCase(svc, cache, quietLogger())

	first, err := uc.Execute(ctx, created.ID)
	require.NoError(t, err)
	second, err := uc.Execute(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.findCalls, "第二次应命中缓存")

	t.Run("不存在", func(t *testing.T) {
		_, err := uc.Execute(ctx, 404)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		assert.Equal(t, 404, apperrors.GetAppError(err).HTTPStatus())
	})

	t.Run("缓存故障回源", func(t *testing.T) {
		uc := NewGetBookUseCase(svc, brokenCache{}, quietLogger())
		dto, err := uc.Execute(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", dto.Title)
	})
}

func TestUpdateBookUseCase(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := book.NewService(repo)
	cache := newCache()
	tx := &directTx{}

	created, err := svc.CreateBook(ctx, duneInput().attributes())
	require.NoError(t, err)

	get := NewGetBookUseCase(svc, cache, quietLogger())
	_, err = get.Execute(ctx, created.ID)
	require.NoError(t, err)

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, eventOfType(book.EventUpdated)).Return(nil)
	uc := NewUpdateBookUseCase(svc, tx, cache, pub, quietLogger())

	in := duneInput()
	in.Title = "Dune Messiah"
	in.IsBorrowed = true
	require.NoError(t, uc.Execute(ctx, created.ID, in))
	assert.Equal(t, 1, tx.calls)
	pub.AssertExpectations(t)

	dto, err := get.Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", dto.Title, "更新后详情缓存应失效")
	assert.True(t, dto.IsBorrowed)

	t.Run("不存在", func(t *testing.T) {
		pub := new(mockPublisher)
		uc := NewUpdateBookUseCase(svc, tx, cache, pub, quietLogger())
		err := uc.Execute(ctx, 999, duneInput())
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestDeleteBookUseCase(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := book.NewService(repo)
	cache := newCache()

	created, err := svc.CreateBook(ctx, duneInput().attributes())
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, 0, created))

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e book.Event) bool {
		return e.Type == book.EventDeleted && e.BookID == created.ID && e.Book == nil
	})).Return(nil)

	uc := NewDeleteBookUseCase(svc, cache, pub, quietLogger())
	require.NoError(t, uc.Execute(ctx, created.ID))
	pub.AssertExpectations(t)

	_, err = cache.Get(ctx, created.ID)
	assert.ErrorIs(t, err, book.ErrCacheMiss)

	assert.ErrorIs(t, uc.Execute(ctx, created.ID), book.ErrBookNotFound)
}

func TestListBooksUseCase(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := book.NewService(repo)
	uc := NewListBooksUseCase(svc)

	list, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, _ = svc.CreateBook(ctx, duneInput().attributes())
	list, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSearchBooksUseCase(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := book.NewService(repo)
	cache := newCache()
	_, _ = svc.CreateBook(ctx, duneInput().attributes())

	uc := NewSearchBooksUseCase(svc, cache, quietLogger())

	resp, err := uc.Execute(ctx, SearchBooksRequest{Title: "dune"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalItems)
	assert.Equal(t, 1, resp.PageNumber)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, 1, resp.TotalPages)

	_, err = uc.Execute(ctx, SearchBooksRequest{Title: "DUNE"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.searchCalls, "相同条件应命中缓存")

	t.Run("写操作使搜索缓存失效", func(t *testing.T) {
		create := NewCreateBookUseCase(svc, cache, new(noopPublisher), quietLogger())
		_, err := create.Execute(ctx, duneInput())
		require.NoError(t, err)

		resp, err := uc.Execute(ctx, SearchBooksRequest{Title: "dune"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.TotalItems)
		assert.Equal(t, 2, repo.searchCalls)
	})

	t.Run("价格按元转换为分", func(t *testing.T) {
		lo, hi := 9.99, 20.0
		c, err := SearchBooksRequest{MinPrice: &lo, MaxPrice: &hi}.criteria()
		require.NoError(t, err)
		assert.Equal(t, int64(999), *c.MinPrice)
		assert.Equal(t, int64(2000), *c.MaxPrice)
	})

	t.Run("非法排序", func(t *testing.T) {
		_, err := uc.Execute(ctx, SearchBooksRequest{SortBy: "isbn"})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidSort))
	})

	t.Run("非法分页", func(t *testing.T) {
		_, err := uc.Execute(ctx, SearchBooksRequest{PageSize: 101})
		assert.ErrorIs(t, err, book.ErrInvalidPageSize)
	})
}

// blockOnce 第一次调用时通知reading并阻塞到release关闭
func blockOnce(reading chan<- struct{}, release <-chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			close(reading)
			<-release
		})
	}
}

func TestSearchBooksUseCase_WriteDuringQuery(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := book.NewService(repo)
	cache := newCache()

	in := duneInput()
	in.Title = "Old"
	created, err := svc.CreateBook(ctx, in.attributes())
	require.NoError(t, err)

	search := NewSearchBooksUseCase(svc, cache, quietLogger())
	update := NewUpdateBookUseCase(svc, &directTx{}, cache, new(noopPublisher), quietLogger())

	reading, release := make(chan struct{}), make(chan struct{})
	repo.setHooks(nil, blockOnce(reading, release))

	inflight := make(chan *SearchBooksResponse, 1)
	go func() {
		resp, err := search.Execute(ctx, SearchBooksRequest{})
		assert.NoError(t, err)
		inflight <- resp
	}()

	<-reading
	repo.setHooks(nil, nil)
	in.Title = "New"
	require.NoError(t, update.Execute(ctx, created.ID, in))
	close(release)

	stale := <-inflight
	require.Len(t, stale.Items, 1)
	assert.Equal(t, "Old", stale.Items[0].Title)

	resp, err := search.Execute(ctx, SearchBooksRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "New", resp.Items[0].Title, "查询期间提交的写操作之后不应读到旧结果")
}

func TestGetBookUseCase_WriteDuringQuery(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := book.NewService(repo)
	cache := newCache()

	in := duneInput()
	in.Title = "Old"
	created, err := svc.CreateBook(ctx, in.attributes())
	require.NoError(t, err)

	get := NewGetBookUseCase(svc, cache, quietLogger())
	update := NewUpdateBookUseCase(svc, &directTx{}, cache, new(noopPublisher), quietLogger())

	reading, release := make(chan struct{}), make(chan struct{})
	repo.setHooks(blockOnce(reading, release), nil)

	inflight := make(chan *BookDTO, 1)
	go func() {
		dto, err := get.Execute(ctx, created.ID)
		assert.NoError(t, err)
		inflight <- dto
	}()

	<-reading
	repo.setHooks(nil, nil)
	in.Title = "New"
	require.NoError(t, update.Execute(ctx, created.ID, in))
	close(release)

	assert.Equal(t, "Old", (<-inflight).Title)

	dto, err := get.Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", dto.Title, "旧快照不应回填到缓存")
}

type noopPublisher struct{}

func (*noopPublisher) Publish(context.Context, book.Event) error { return nil }

func TestResultOf(t *testing.T) {
	assert.Equal(t, "success", resultOf(nil))
	assert.Equal(t, "not_found", resultOf(book.ErrBookNotFound))
	assert.Equal(t, "invalid", resultOf(book.ErrInvalidRating))
	assert.Equal(t, "error", resultOf(errors.New("boom")))
}
