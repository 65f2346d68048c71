package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xiebiao/booklibrary/internal/domain/user"
)

// TokenBlacklist 进程内Token黑名单
// LRU的统一TTL取Token最长有效期,每条记录再按自身过期时间判断
type TokenBlacklist struct {
	entries *lru.LRU[string, time.Time]
	now     func() time.Time
}

var _ user.TokenBlacklist = (*TokenBlacklist)(nil)

// NewTokenBlacklist 创建进程内Token黑名单
func NewTokenBlacklist(size int, maxTTL time.Duration) *TokenBlacklist {
	if size <= 0 {
		size = 10000
	}
	return &TokenBlacklist{
		entries: lru.NewLRU[string, time.Time](size, nil, maxTTL),
		now:     time.Now,
	}
}

// Revoke 将Token加入黑名单
func (b *TokenBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.entries.Add(tokenID, b.now().Add(ttl))
	return nil
}

// IsRevoked 检查Token是否在黑名单中
func (b *TokenBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	expiresAt, ok := b.entries.Get(tokenID)
	if !ok {
		return false, nil
	}
	if !b.now().Before(expiresAt) {
		b.entries.Remove(tokenID)
		return false, nil
	}
	return true, nil
}
