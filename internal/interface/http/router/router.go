// Package router 组装gin引擎:全局中间件、路由分组、Swagger与Prometheus端点
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/booklibrary/docs"
	"github.com/xiebiao/booklibrary/internal/infrastructure/config"
	"github.com/xiebiao/booklibrary/internal/interface/http/dto"
	"github.com/xiebiao/booklibrary/internal/interface/http/handler"
	"github.com/xiebiao/booklibrary/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/metrics"
	"github.com/xiebiao/booklibrary/pkg/response"
)

// apiBases 图书与认证路由的挂载前缀
// /api/v1 与 /api/v1.0 为带版本的路由,/api 为未带版本的旧路由(默认1.0)
var apiBases = []string{"/v1", "/v1.0", ""}

// Handlers 路由依赖的处理器与中间件
type Handlers struct {
	Book        *handler.BookHandler
	Auth        *handler.AuthHandler
	Health      *handler.HealthHandler
	AuthMW      *middleware.AuthMiddleware
	LoginLimits *middleware.RateLimiter
}

// New 创建并配置gin引擎
func New(cfg *config.Config, log *logrus.Logger, h Handlers) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	dto.RegisterValidators()

	r := gin.New()
	// 路径大小写不一致时重定向到注册的路由
	r.RedirectFixedPath = true

	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.CORS(cfg.CORS),
	)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	})

	r.GET("/health", h.Health.Readiness)
	r.GET("/health/live", h.Health.Liveness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api", middleware.APIVersion())
	for _, base := range apiBases {
		g := api.Group(base)
		registerBookRoutes(g.Group("/books"), h)
		registerAuthRoutes(g.Group("/auth"), h)
	}

	return r
}

func registerBookRoutes(books *gin.RouterGroup, h Handlers) {
	books.GET("", h.Book.ListBooks)
	books.POST("", h.Book.CreateBook)
	books.GET("/search", h.Book.SearchBooks)
	books.GET("/protected", h.AuthMW.RequireAuth(), h.Book.Protected)
	books.GET("/:id", h.Book.GetBook)
	books.PUT("/:id", h.Book.UpdateBook)
	books.DELETE("/:id", h.Book.DeleteBook)
}

func registerAuthRoutes(auth *gin.RouterGroup, h Handlers) {
	loginRejected := func(*gin.Context) { metrics.RecordLoginAttempt(metrics.LoginRateLimited) }
	auth.POST("/login", h.LoginLimits.Middleware(loginRejected), h.Auth.Login)
	auth.POST("/register", h.LoginLimits.Middleware(), h.Auth.Register)
	auth.POST("/logout", h.AuthMW.RequireAuth(), h.Auth.Logout)
}
