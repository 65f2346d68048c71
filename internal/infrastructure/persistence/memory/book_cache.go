// Package memory 提供进程内的缓存与黑名单实现
// 未启用Redis时使用(单实例部署、本地开发、测试)
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xiebiao/booklibrary/internal/domain/book"
)

// BookCache 基于LRU的进程内图书缓存
// 详情和搜索结果分两个LRU存放,搜索结果的键带代号
// mu保证"比较代号再写入"与Invalidate互斥
type BookCache struct {
	mu       sync.Mutex
	gen      int64
	books    *lru.LRU[string, book.Book]
	searches *lru.LRU[string, book.SearchResult]
}

var _ book.Cache = (*BookCache)(nil)

// NewBookCache 创建进程内图书缓存
// size为每个LRU的最大条目数
func NewBookCache(size int, detailTTL, searchTTL time.Duration) *BookCache {
	if size <= 0 {
		size = 1000
	}
	return &BookCache{
		books:    lru.NewLRU[string, book.Book](size, nil, detailTTL),
		searches: lru.NewLRU[string, book.SearchResult](size, nil, searchTTL),
	}
}

// Generation 读取当前代号
func (c *BookCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

// Get 读取图书详情(返回副本)
func (c *BookCache) Get(_ context.Context, id uint) (*book.Book, error) {
	b, ok := c.books.Get(bookKey(id))
	if !ok {
		return nil, book.ErrCacheMiss
	}
	return &b, nil
}

// Set 回填图书详情,代号已变化时不写入
func (c *BookCache) Set(_ context.Context, gen int64, b *book.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.books.Add(bookKey(b.ID), *b)
	return nil
}

// GetSearch 读取gen代号下的搜索结果
func (c *BookCache) GetSearch(_ context.Context, gen int64, key string) (*book.SearchResult, error) {
	r, ok := c.searches.Get(searchKey(gen, key))
	if !ok {
		return nil, book.ErrCacheMiss
	}
	r.Items = cloneBooks(r.Items)
	return &r, nil
}

// SetSearch 回填搜索结果,代号已变化时不写入
func (c *BookCache) SetSearch(_ context.Context, gen int64, key string, result *book.SearchResult) error {
	r := *result
	r.Items = cloneBooks(result.Items)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.searches.Add(searchKey(gen, key), r)
	return nil
}

// Invalidate 递增代号,清空搜索结果并删除详情
func (c *BookCache) Invalidate(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.searches.Purge()
	if id != 0 {
		c.books.Remove(bookKey(id))
	}
	return nil
}

func searchKey(gen int64, key string) string {
	return strconv.FormatInt(gen, 10) + ":" + key
}

func bookKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// cloneBooks 深拷贝,避免调用方修改缓存中的数据
func cloneBooks(items []*book.Book) []*book.Book {
	out := make([]*book.Book, len(items))
	for i, b := range items {
		cp := *b
		out[i] = &cp
	}
	return out
}

// NoopBookCache 关闭缓存(cache.enabled=false)时使用,读取总是未命中
type NoopBookCache struct{}

var _ book.Cache = NoopBookCache{}

func (NoopBookCache) Generation(context.Context) (int64, error)     { return 0, nil }
func (NoopBookCache) Get(context.Context, uint) (*book.Book, error) { return nil, book.ErrCacheMiss }
func (NoopBookCache) Set(context.Context, int64, *book.Book) error  { return nil }
func (NoopBookCache) GetSearch(context.Context, int64, string) (*book.SearchResult, error) {
	return nil, book.ErrCacheMiss
}
func (NoopBookCache) SetSearch(context.Context, int64, string, *book.SearchResult) error { return nil }
func (NoopBookCache) Invalidate(context.Context, uint) error                             { return nil }
