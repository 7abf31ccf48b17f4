package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"taleteller/pkg/logger"
	"taleteller/pkg/metrics"
)

// TraceIDHeader 响应中回传的 trace id
const TraceIDHeader = "X-Trace-ID"

// unmatchedRoute 未命中路由时的指标标签，避免原始路径撑爆基数
const unmatchedRoute = "unmatched"

// Trace 为每个请求建立 span；skip 中的路径（探针、指标）不追踪
func Trace(service string, skip ...string) []gin.HandlerFunc {
	skipped := pathSet(skip)
	span := otelgin.Middleware(service)
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if _, ok := skipped[c.Request.URL.Path]; ok {
				c.Next()
				return
			}
			span(c)
		},
		traceIDs,
	}
}

// traceIDs 把 trace/span id 写入日志上下文并回传给客户端
func traceIDs(c *gin.Context) {
	sc := trace.SpanContextFromContext(c.Request.Context())
	if sc.IsValid() {
		traceID := sc.TraceID().String()
		ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
		ctx = logger.WithContext(ctx, logger.SpanIDKey, sc.SpanID().String())
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceIDHeader, traceID)
	}
	c.Next()
}

// Metrics 按路由模板记录请求数、耗时与报文大小
func Metrics(skip ...string) gin.HandlerFunc {
	skipped := pathSet(skip)
	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if n := c.Request.ContentLength; n > 0 {
			metrics.HTTPRequestSize.WithLabelValues(method, route).Observe(float64(n))
		}
		if n := c.Writer.Size(); n > 0 {
			metrics.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(n))
		}
	}
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}
