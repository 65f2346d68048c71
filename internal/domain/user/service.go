package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// 用户领域错误
var (
	ErrInvalidUsername = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名应为3-50位字母、数字、下划线、点或连字符")
	ErrWeakPassword    = apperrors.New(apperrors.ErrCodeInvalidParams, "密码应为8-72位，且同时包含字母和数字")
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// Service 用户领域服务
// 设计说明：
// 1. 密码加密与校验集中在这里，应用层只拿到User实体
// 2. 用户名唯一性由数据库UNIQUE索引保证，Repository转换为ErrUsernameDuplicate
type Service interface {
	// Register 注册新用户
	Register(ctx context.Context, username, password string) (*User, error)

	// Authenticate 校验用户名密码
	// 用户不存在和密码错误统一返回ErrInvalidCredentials，避免暴露用户是否存在
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// EnsureUser 用户不存在时按给定密码创建（启动时初始化内置账号）
	// 不做密码强度校验，已存在时不修改密码
	EnsureUser(ctx context.Context, username, password string) (*User, bool, error)
}

type service struct {
	repo      Repository
	cost      int
	dummyHash []byte
}

// NewService 创建用户服务
// cost为bcrypt计算强度，<=0时使用bcrypt.DefaultCost
func NewService(repo Repository, cost int) Service {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	// 用户不存在时也做一次比较，使两种失败的耗时接近
	dummy, _ := bcrypt.GenerateFromPassword([]byte("booklibrary-dummy-password"), cost)
	return &service{repo: repo, cost: cost, dummyHash: dummy}
}

func (s *service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}
	return s.create(ctx, username, password)
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}
	return u, nil
}

func (s *service) EnsureUser(ctx context.Context, username, password string) (*User, bool, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, false, err
	}

	u, err = s.create(ctx, username, password)
	if err != nil {
		// 多实例同时启动时可能已被其他实例创建
		if errors.Is(err, apperrors.ErrUsernameDuplicate) {
			u, err = s.repo.FindByUsername(ctx, username)
			return u, false, err
		}
		return nil, false, err
	}
	return u, true, nil
}

func (s *service) create(ctx context.Context, username, password string) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(username, string(hashed))
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// validatePasswordStrength 密码强度校验
// 规则：8-72位（bcrypt只使用前72字节），必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
