package user

import (
	"context"
	"time"
)

// Repository 用户仓储接口
// 接口定义在domain层，实现在infrastructure/persistence/orm
type Repository interface {
	// Create 创建用户
	// 用户名已存在时返回errors.ErrUsernameDuplicate
	Create(ctx context.Context, user *User) error

	// FindByUsername 根据用户名查找用户
	// 不存在时返回errors.ErrUserNotFound
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// TokenBlacklist 已注销Token的黑名单
// 以jti为键，过期时间与Token剩余有效期一致
type TokenBlacklist interface {
	// Revoke 注销Token，ttl<=0时不记录（Token已过期）
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked 判断Token是否已注销
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
