//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	appauth "github.com/xiebiao/booklibrary/internal/application/auth"
	appbook "github.com/xiebiao/booklibrary/internal/application/book"
	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/internal/infrastructure/config"
	"github.com/xiebiao/booklibrary/internal/infrastructure/persistence/orm"
	"github.com/xiebiao/booklibrary/internal/interface/http/handler"
	"github.com/xiebiao/booklibrary/internal/interface/http/middleware"
	"github.com/xiebiao/booklibrary/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis、缓存、消息发布、健康检查
var infrastructureSet = wire.NewSet(
	orm.NewDB,
	provideRedis,
	provideBookCache,
	provideTokenBlacklist,
	providePublisher,
	provideHealthChecker,
)

var repositorySet = wire.NewSet(
	orm.NewBookRepository,
	orm.NewUserRepository,
	orm.NewTxManager,
	wire.Bind(new(appbook.Transactor), new(*orm.TxManager)),
)

var domainSet = wire.NewSet(
	book.NewService,
	provideUserService,
)

var applicationSet = wire.NewSet(
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewSearchBooksUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appauth.NewLoginUseCase,
	appauth.NewLogoutUseCase,
	appauth.NewRegisterUseCase,
	provideBootstrap,
)

var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideRateLimiter,
	middleware.NewAuthMiddleware,
	handler.NewBookHandler,
	handler.NewAuthHandler,
	handler.NewHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	provideServer,
)

// InitializeApp 组装应用,返回的cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config, log *logrus.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
