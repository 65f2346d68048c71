package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/booklibrary/internal/domain/user"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// TokenBlacklist Redis实现的Token黑名单
// 键: booklibrary:blacklist:{jti}，过期时间等于Token剩余有效期，到期自动清理
type TokenBlacklist struct {
	client *redis.Client
}

var _ user.TokenBlacklist = (*TokenBlacklist)(nil)

// NewTokenBlacklist 创建Token黑名单
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Revoke 将Token加入黑名单
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistKey(tokenID), "revoked", ttl).Err(); err != nil {
		return apperrors.ErrCacheError.WithMessage("添加Token到黑名单失败").WithCause(err)
	}
	return nil
}

// IsRevoked 检查Token是否在黑名单中
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := b.client.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		return false, apperrors.ErrCacheError.WithMessage("检查黑名单失败").WithCause(err)
	}
	return exists > 0, nil
}

func blacklistKey(tokenID string) string {
	return keyPrefix + "blacklist:" + tokenID
}
