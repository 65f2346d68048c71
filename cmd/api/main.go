package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/booklibrary/internal/infrastructure/config"
	"github.com/xiebiao/booklibrary/pkg/logger"
	"github.com/xiebiao/booklibrary/pkg/metrics"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// main 图书馆服务入口
//
//	@title						Book Library API
//	@version					1.0
//	@description				图书馆管理服务:图书增删改查、条件搜索与JWT认证
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer {token}
func main() {
	// 1. 配置
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志(配置文件变化时热更新级别)
	log, closer, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		stdlog.Fatalf("初始化日志失败: %v", err)
	}
	defer closer.Close()

	stopWatch, err := cfg.OnChange(func(next *config.Config) {
		level, err := logger.ParseLevel(next.Log.Level)
		if err != nil {
			log.WithError(err).Warn("忽略非法的日志级别")
			return
		}
		log.SetLevel(level)
		log.WithField("level", level.String()).Info("日志级别已更新")
	})
	if err != nil {
		log.WithError(err).Warn("配置热重载未启用")
	} else {
		defer stopWatch()
	}

	// 3. 指标与追踪
	metrics.InitMetrics()

	shutdownTracer, err := tracing.InitTracer(context.Background(), tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
		Environment: cfg.Env,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.WithError(err).Fatal("初始化追踪失败")
	}

	// 4. 依赖注入
	app, cleanup, err := InitializeApp(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("初始化应用失败")
	}

	if err := app.Bootstrap.Execute(context.Background()); err != nil {
		cleanup()
		log.WithError(err).Fatal("初始化默认账号失败")
	}

	// 5. 启动HTTP服务
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    app.Server.Addr,
			"version": version,
			"db":      cfg.Database.Driver,
			"redis":   cfg.Redis.Enabled,
			"mq":      cfg.MQ.Enabled,
		}).Info("服务启动")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP服务异常退出")
		}
	}()

	// 6. 优雅关闭: 停止接收新请求,等待进行中的请求完成后释放资源
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("收到关闭信号")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP服务强制关闭")
	}
	cleanup()
	if err := shutdownTracer(ctx); err != nil {
		log.WithError(err).Warn("关闭追踪失败")
	}
	log.Info("服务已关闭")
}
