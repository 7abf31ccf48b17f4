package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORS 跨域中间件；浏览器前端与 API 不同源。
// 未配置来源或包含 "*" 时允许任意来源且不带凭据。
func CORS(cfg CORSConfig) gin.HandlerFunc {
	c := cors.DefaultConfig()
	c.AllowMethods = withDefault(cfg.AllowedMethods, http.MethodGet, http.MethodPost, http.MethodOptions)
	c.AllowHeaders = withDefault(cfg.AllowedHeaders, "Origin", "Content-Type", RequestIDHeader, SessionIDHeader)
	c.ExposeHeaders = []string{RequestIDHeader, TraceIDHeader}
	c.MaxAge = 12 * time.Hour

	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	return cors.New(c)
}

func withDefault(v []string, def ...string) []string {
	if len(v) > 0 {
		return v
	}
	return def
}
