package dto

// LoginRequest 登录请求
// 字段为空由用例统一返回"Username and password are required."
type LoginRequest struct {
	Username string `json:"username" example:"test"`
	Password string `json:"password" example:"password"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"reader"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"s3cretpass"`
}
