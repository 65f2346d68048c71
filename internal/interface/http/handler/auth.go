package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/booklibrary/internal/application/auth"
	"github.com/xiebiao/booklibrary/internal/interface/http/dto"
	"github.com/xiebiao/booklibrary/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/response"
)

// AuthHandler 认证HTTP处理器
type AuthHandler struct {
	login    *auth.LoginUseCase
	logout   *auth.LogoutUseCase
	register *auth.RegisterUseCase
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(login *auth.LoginUseCase, logout *auth.LogoutUseCase, register *auth.RegisterUseCase) *AuthHandler {
	return &AuthHandler{login: login, logout: logout, register: register}
}

// Login 登录
// @Summary      登录
// @Description  校验用户名密码,签发1小时有效的JWT
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=auth.LoginResponse}
// @Failure      400 {object} response.Response "用户名或密码为空"
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Failure      429 {object} response.Response "请求过于频繁"
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.ErrMissingCredentials)
		return
	}

	result, err := h.login.Execute(c.Request.Context(), auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Register 注册API账号
// @Summary      注册
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=auth.RegisterResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "用户名已存在"
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.register.Execute(c.Request.Context(), auth.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "", result)
}

// Logout 登出,当前Token立即失效
// @Summary      登出
// @Tags         认证
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} response.Response "未登录或Token无效"
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.logout.Execute(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
