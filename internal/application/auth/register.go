package auth

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/booklibrary/internal/domain/user"
)

// RegisterUseCase 注册API账号
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Password string
}

// RegisterResponse 注册响应(不含密码)
type RegisterResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	u, err := uc.userService.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return &RegisterResponse{ID: u.ID, Username: u.Username}, nil
}

// BootstrapUseCase 启动时确保内置账号存在
// 已存在时不修改其密码
type BootstrapUseCase struct {
	userService user.Service
	username    string
	password    string
	log         *logrus.Logger
}

// NewBootstrapUseCase 创建内置账号初始化用例
func NewBootstrapUseCase(userService user.Service, username, password string, log *logrus.Logger) *BootstrapUseCase {
	return &BootstrapUseCase{userService: userService, username: username, password: password, log: log}
}

// Execute 用户名为空时跳过
func (uc *BootstrapUseCase) Execute(ctx context.Context) error {
	if uc.username == "" {
		return nil
	}

	u, created, err := uc.userService.EnsureUser(ctx, uc.username, uc.password)
	if err != nil {
		return err
	}
	if created {
		uc.log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("已创建内置账号")
	}
	return nil
}
