package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/booklibrary/internal/domain/user"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/jwt"
	"github.com/xiebiao/booklibrary/pkg/response"
)

const claimsKey = "claims"

// AuthMiddleware JWT认证中间件
// 1. 从Authorization头提取Bearer Token
// 2. 校验签名、iss、aud、有效期
// 3. 检查jti是否已注销
// 4. 将Claims写入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  user.TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist user.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, blacklist: blacklist}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, apperrors.ErrInvalidToken.WithMessage("Token格式错误"))
			return
		}

		claims, err := m.jwtManager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			return
		}

		revoked, err := m.blacklist.IsRevoked(c.Request.Context(), claims.TokenID())
		if err != nil {
			response.Error(c, err)
			return
		}
		if revoked {
			response.Error(c, apperrors.ErrTokenRevoked)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims 获取当前请求的Claims,未认证时返回nil
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}
