package book

import (
	"context"
	"time"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 查询不到时返回ErrBookNotFound
type Repository interface {
	// Create 创建图书,成功后回填ID和时间戳
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindAll 查询全部图书(按ID升序)
	FindAll(ctx context.Context) ([]*Book, error)

	// Update 全量更新图书
	Update(ctx context.Context, book *Book) error

	// Delete 物理删除图书
	Delete(ctx context.Context, id uint) error

	// Search 按条件过滤、排序并分页,同时返回过滤后的总数
	Search(ctx context.Context, criteria SearchCriteria) ([]*Book, int64, error)
}

// Cache 图书缓存接口
// 实现: Redis(多实例共享) 或进程内LRU(单实例)
//
// 代号(generation)保证回填不会写回旧数据:
//  1. 读路径在查询数据库之前取一次代号,回填时带上该代号
//  2. 写路径在事务提交后调用Invalidate,先递增代号再删除详情
//  3. 回填时代号已变化,说明期间有写操作,详情放弃写入,搜索结果落在旧代号下不再被读取
type Cache interface {
	// Generation 读取当前代号
	Generation(ctx context.Context) (int64, error)

	// Get 读取图书详情,未命中返回ErrCacheMiss
	Get(ctx context.Context, id uint) (*Book, error)

	// Set 以gen代号回填图书详情,代号已变化时不写入
	Set(ctx context.Context, gen int64, book *Book) error

	// GetSearch 读取gen代号下的搜索结果,未命中返回ErrCacheMiss
	GetSearch(ctx context.Context, gen int64, key string) (*SearchResult, error)

	// SetSearch 以gen代号回填搜索结果
	SetSearch(ctx context.Context, gen int64, key string, result *SearchResult) error

	// Invalidate 递增代号并删除id对应的详情(id为0时只递增代号)
	Invalidate(ctx context.Context, id uint) error
}

// EventType 图书事件类型(同时作为消息路由键)
type EventType string

const (
	EventCreated EventType = "book.created"
	EventUpdated EventType = "book.updated"
	EventDeleted EventType = "book.deleted"
)

// Event 图书领域事件
type Event struct {
	Type       EventType
	BookID     uint
	Book       *Book // 删除事件为nil
	OccurredAt time.Time
}

// NewEvent 创建领域事件
func NewEvent(t EventType, id uint, b *Book) Event {
	return Event{Type: t, BookID: id, Book: b, OccurredAt: time.Now()}
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
