package auth

import (
	"context"
	"time"

	"github.com/xiebiao/booklibrary/internal/domain/user"
	"github.com/xiebiao/booklibrary/pkg/jwt"
)

// LogoutUseCase 登出用例
// 将当前Token的jti加入黑名单,保留到Token自然过期
type LogoutUseCase struct {
	blacklist user.TokenBlacklist
	now       func() time.Time
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(blacklist user.TokenBlacklist) *LogoutUseCase {
	return &LogoutUseCase{blacklist: blacklist, now: time.Now}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims) error {
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(uc.now())
	}
	return uc.blacklist.Revoke(ctx, claims.TokenID(), ttl)
}
