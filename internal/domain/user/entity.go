package user

import (
	"time"
)

// User API账号实体（聚合根）
// DDD设计说明：
// 1. 只保存bcrypt哈希，不暴露明文密码
// 2. 领域实体不依赖GORM tag（infrastructure层负责映射）
type User struct {
	ID           uint
	Username     string
	PasswordHash string // bcrypt哈希值
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
