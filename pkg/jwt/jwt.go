package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// Manager JWT管理器
// 设计说明：
// 1. 使用HS256对称签名
// 2. 签发时写入iss/aud/sub/jti，解析时全部校验
// 3. jti用于登出黑名单
type Manager struct {
	secret            []byte        // JWT签名密钥
	issuer            string        // 签发者
	audience          string        // 受众
	accessTokenExpire time.Duration // Access Token有效期
	now               func() time.Time
}

// NewManager 创建JWT管理器
func NewManager(secret, issuer, audience string, accessTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:            []byte(secret),
		issuer:            issuer,
		audience:          audience,
		accessTokenExpire: accessTokenExpire,
		now:               time.Now,
	}
}

// Claims 自定义JWT Claims
// Subject保存用户名，ID保存jti
type Claims struct {
	UserID uint `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Username 返回Token所属用户名
func (c *Claims) Username() string {
	return c.Subject
}

// TokenID 返回jti
func (c *Claims) TokenID() string {
	return c.ID
}

// Token 签发结果
type Token struct {
	AccessToken string
	TokenID     string
	ExpiresAt   time.Time
	ExpiresIn   int64 // 有效期（秒）
}

// GenerateToken 为用户签发Access Token
func (m *Manager) GenerateToken(userID uint, username string) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.accessTokenExpire)
	tokenID := uuid.NewString()

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        tokenID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	return &Token{
		AccessToken: signed,
		TokenID:     tokenID,
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(m.accessTokenExpire.Seconds()),
	}, nil
}

// ParseToken 解析并验证Token
// 校验项：签名算法、签名、iss、aud、exp、nbf
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
