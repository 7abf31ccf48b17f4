package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 2 * time.Second

// Pinger 可探活的依赖
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// LLMChecker 检查模型提供商配置
type LLMChecker interface {
	Check(ctx context.Context) error
}

// HealthHandler 存活与就绪探针
type HealthHandler struct {
	version string
	redis   Pinger
	llm     LLMChecker
}

// NewHealthHandler redis 为 nil 表示未启用，不参与就绪判断
func NewHealthHandler(version string, redis Pinger, llm LLMChecker) *HealthHandler {
	return &HealthHandler{version: version, redis: redis, llm: llm}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 进程与版本
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Live 存活探针
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready 就绪探针：模型配置必须完整，启用的 Redis 必须可达
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	resp := readinessResponse{Status: "ok", Checks: make(map[string]*readinessCheck, 2)}

	if h.llm == nil {
		resp.Checks["llm"] = &readinessCheck{Status: "missing"}
	} else {
		resp.Checks["llm"] = probe(ctx, h.llm.Check)
	}

	if h.redis == nil {
		resp.Checks["redis"] = &readinessCheck{Status: "disabled"}
	} else {
		resp.Checks["redis"] = probe(ctx, h.redis.HealthCheck)
	}

	for _, chk := range resp.Checks {
		if chk.Status != "ok" && chk.Status != "disabled" {
			resp.Status = "not_ready"
		}
	}
	if resp.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func probe(ctx context.Context, fn func(context.Context) error) *readinessCheck {
	start := time.Now()
	err := fn(ctx)
	chk := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		chk.Status = "error"
		chk.Error = err.Error()
	}
	return chk
}
