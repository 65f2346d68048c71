// Package health 检查服务依赖(数据库、Redis)的健康状态
package health

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Status 整体健康状态
type Status struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus 单个依赖的健康状态
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

// Checker 健康检查器
// 数据库不可用 => unhealthy;Redis不可用 => degraded(缓存可降级)
type Checker struct {
	db      *sql.DB
	redis   *redis.Client
	version string
}

// NewChecker 创建健康检查器,redis可为nil
func NewChecker(db *sql.DB, rdb *redis.Client, version string) *Checker {
	return &Checker{db: db, redis: rdb, version: version}
}

// Check 检查全部依赖
func (h *Checker) Check(ctx context.Context) Status {
	status := Status{
		Status:       StatusHealthy,
		Timestamp:    time.Now().UTC(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	if h.db != nil {
		dbStatus := h.checkDatabase(ctx)
		status.Dependencies["database"] = dbStatus
		status.Status = worse(status.Status, dbStatus.Status)
	}

	if h.redis != nil {
		redisStatus := h.checkRedis(ctx)
		status.Dependencies["redis"] = redisStatus
		if redisStatus.Status == StatusUnhealthy {
			status.Status = worse(status.Status, StatusDegraded)
		}
	}

	return status
}

func (h *Checker) checkDatabase(ctx context.Context) DependencyStatus {
	start := time.Now()

	if err := h.db.PingContext(ctx); err != nil {
		return unhealthy(start, err.Error())
	}

	var one int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return unhealthy(start, "query failed: "+err.Error())
	}

	status := DependencyStatus{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}

	stats := h.db.Stats()
	if stats.MaxOpenConnections > 1 && stats.InUse >= stats.MaxOpenConnections {
		status.Status = StatusDegraded
		status.Message = "connection pool exhausted"
	}
	return status
}

func (h *Checker) checkRedis(ctx context.Context) DependencyStatus {
	start := time.Now()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return unhealthy(start, err.Error())
	}
	return DependencyStatus{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}
}

func unhealthy(start time.Time, msg string) DependencyStatus {
	return DependencyStatus{
		Status:    StatusUnhealthy,
		Message:   msg,
		LatencyMS: time.Since(start).Milliseconds(),
	}
}

var severity = map[string]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}

func worse(a, b string) string {
	if severity[b] > severity[a] {
		return b
	}
	return a
}
