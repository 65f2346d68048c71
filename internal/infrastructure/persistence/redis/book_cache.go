package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// BookCache Redis实现的图书缓存
// 缓存策略:
//  1. 详情: Cache-Aside,键 booklibrary:book:{id},回填时WATCH代号键,代号变化则放弃写入
//  2. 搜索结果: 键中带代号 booklibrary:book:search:{gen}:{hash}
//     写操作只需INCR代号,旧代号的键不再被读取,由TTL自然过期(无需SCAN删除)
type BookCache struct {
	client    *redis.Client
	detailTTL time.Duration
	searchTTL time.Duration
}

var _ book.Cache = (*BookCache)(nil)

// errStaleGeneration 回填时代号已变化
var errStaleGeneration = errors.New("cache generation changed")

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, detailTTL, searchTTL time.Duration) *BookCache {
	return &BookCache{client: client, detailTTL: detailTTL, searchTTL: searchTTL}
}

// Generation 读取当前代号,键不存在时为0
func (c *BookCache) Generation(ctx context.Context) (int64, error) {
	return readGeneration(ctx, c.client)
}

// Get 读取图书详情
func (c *BookCache) Get(ctx context.Context, id uint) (*book.Book, error) {
	var b book.Book
	if err := c.getJSON(ctx, detailKey(id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Set 回填图书详情
// WATCH代号键:读取代号与写入详情之间发生Invalidate时EXEC失败,视为放弃写入
func (c *BookCache) Set(ctx context.Context, gen int64, b *book.Book) error {
	val, err := json.Marshal(b)
	if err != nil {
		return apperrors.ErrCacheError.WithMessage("序列化缓存失败").WithCause(err)
	}

	key := detailKey(b.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, c.detailTTL)
			return nil
		})
		return err
	}, generationKey())

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.ErrCacheError.WithMessage("设置缓存失败").WithCause(err)
	}
}

// GetSearch 读取gen代号下的搜索结果
func (c *BookCache) GetSearch(ctx context.Context, gen int64, key string) (*book.SearchResult, error) {
	var result book.SearchResult
	if err := c.getJSON(ctx, searchKey(gen, key), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetSearch 以gen代号写入搜索结果
func (c *BookCache) SetSearch(ctx context.Context, gen int64, key string, result *book.SearchResult) error {
	return c.setJSON(ctx, searchKey(gen, key), result, c.searchTTL)
}

// Invalidate 在同一个MULTI中递增代号并删除详情
func (c *BookCache) Invalidate(ctx context.Context, id uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey())
		if id != 0 {
			pipe.Del(ctx, detailKey(id))
		}
		return nil
	})
	if err != nil {
		return apperrors.ErrCacheError.WithMessage("刷新缓存代号失败").WithCause(err)
	}
	return nil
}

// getter *redis.Client 与 *redis.Tx 共有的读取方法
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, g getter) (int64, error) {
	gen, err := g.Get(ctx, generationKey()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, apperrors.ErrCacheError.WithMessage("读取缓存代号失败").WithCause(err)
	}
	return gen, nil
}

func (c *BookCache) getJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return book.ErrCacheMiss
		}
		return apperrors.ErrCacheError.WithMessage("获取缓存失败").WithCause(err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		// 数据损坏按未命中处理,回源后会被覆盖
		_ = c.client.Del(ctx, key).Err()
		return book.ErrCacheMiss
	}
	return nil
}

func (c *BookCache) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	val, err := json.Marshal(v)
	if err != nil {
		return apperrors.ErrCacheError.WithMessage("序列化缓存失败").WithCause(err)
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return apperrors.ErrCacheError.WithMessage("设置缓存失败").WithCause(err)
	}
	return nil
}

func detailKey(id uint) string {
	return fmt.Sprintf("%sbook:%d", keyPrefix, id)
}

func generationKey() string {
	return keyPrefix + "book:gen"
}

func searchKey(gen int64, key string) string {
	return fmt.Sprintf("%sbook:search:%d:%s", keyPrefix, gen, key)
}
