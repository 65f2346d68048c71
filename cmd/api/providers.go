package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/xiebiao/booklibrary/internal/application/auth"
	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/internal/domain/user"
	"github.com/xiebiao/booklibrary/internal/infrastructure/config"
	"github.com/xiebiao/booklibrary/internal/infrastructure/health"
	"github.com/xiebiao/booklibrary/internal/infrastructure/messaging"
	"github.com/xiebiao/booklibrary/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/booklibrary/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/booklibrary/internal/interface/http/middleware"
	"github.com/xiebiao/booklibrary/pkg/jwt"
)

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

// App 组装完成的应用
type App struct {
	Engine    *gin.Engine
	Server    *http.Server
	Bootstrap *auth.BootstrapUseCase
}

// provideRedis 未启用Redis时返回nil,缓存和黑名单退回进程内实现
func provideRedis(cfg *config.Config, log *logrus.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	return redis.NewClient(cfg, log)
}

// provideBookCache 按配置选择缓存实现: 关闭 / Redis / 进程内LRU
func provideBookCache(cfg *config.Config, rdb *goredis.Client) book.Cache {
	switch {
	case !cfg.Cache.Enabled:
		return memory.NoopBookCache{}
	case rdb != nil:
		return redis.NewBookCache(rdb, cfg.Cache.BookTTL, cfg.Cache.SearchTTL)
	default:
		return memory.NewBookCache(cfg.Cache.MemorySize, cfg.Cache.BookTTL, cfg.Cache.SearchTTL)
	}
}

func provideTokenBlacklist(cfg *config.Config, rdb *goredis.Client) user.TokenBlacklist {
	if rdb != nil {
		return redis.NewTokenBlacklist(rdb)
	}
	return memory.NewTokenBlacklist(cfg.Cache.MemorySize, cfg.JWT.AccessTokenExpire)
}

func providePublisher(cfg *config.Config, log *logrus.Logger) (book.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return messaging.NoopPublisher{}, func() {}, nil
	}
	p, cleanup, err := messaging.NewPublisher(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return p, cleanup, nil
}

func provideUserService(repo user.Repository, cfg *config.Config) user.Service {
	return user.NewService(repo, cfg.Auth.BcryptCost)
}

func provideBootstrap(svc user.Service, cfg *config.Config, log *logrus.Logger) *auth.BootstrapUseCase {
	return auth.NewBootstrapUseCase(svc, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword, log)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTokenExpire)
}

func provideRateLimiter(cfg *config.Config) (*middleware.RateLimiter, func()) {
	rl := middleware.NewRateLimiter(cfg.Server.LoginRateLimit, cfg.Server.LoginBurst)
	return rl, rl.Stop
}

func provideHealthChecker(db *gorm.DB, rdb *goredis.Client) (*health.Checker, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return health.NewChecker(sqlDB, rdb, version), nil
}

// provideServer HTTP服务器,外层由otelhttp创建请求根Span
func provideServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      otelhttp.NewHandler(engine, cfg.Tracing.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
