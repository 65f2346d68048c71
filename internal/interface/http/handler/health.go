package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/booklibrary/internal/infrastructure/health"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checker *health.Checker
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Readiness 就绪检查(数据库、Redis)
// @Summary      就绪检查
// @Tags         健康检查
// @Produce      json
// @Success      200 {object} health.Status
// @Failure      503 {object} health.Status
// @Router       /health [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := h.checker.Check(ctx)
	code := http.StatusOK
	if status.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// Liveness 存活检查,进程在运行即返回200
// @Summary      存活检查
// @Tags         健康检查
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health/live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": health.StatusHealthy})
}
