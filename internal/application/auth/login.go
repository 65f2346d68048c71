// Package auth 编排登录、登出、注册等认证用例
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xiebiao/booklibrary/internal/domain/user"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/jwt"
	"github.com/xiebiao/booklibrary/pkg/metrics"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

const tracerName = "booklibrary/application/auth"

// LoginUseCase 用户登录用例
// 1. 用户名、密码任一为空返回400
// 2. 校验密码(bcrypt)
// 3. 签发Access Token(HS256,带jti)
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager) *LoginUseCase {
	return &LoginUseCase{userService: userService, jwtManager: jwtManager}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresIn int64     `json:"expiresIn"` // 秒
	ExpiresAt time.Time `json:"expiresAt"`
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (resp *LoginResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Login")
	defer span.End()
	defer func() { metrics.RecordLoginAttempt(loginResult(err)) }()

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	u, err := uc.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtManager.GenerateToken(u.ID, u.Username)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &LoginResponse{
		Token:     token.AccessToken,
		TokenType: "Bearer",
		ExpiresIn: token.ExpiresIn,
		ExpiresAt: token.ExpiresAt.UTC(),
	}, nil
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return metrics.LoginSuccess
	case errors.Is(err, apperrors.ErrMissingCredentials):
		return metrics.LoginInvalidRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return metrics.LoginInvalidCredentials
	default:
		return metrics.LoginError
	}
}
