package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/AutoMercado/AutoMercado/internal/common/middleware"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const actorKey = "actor"

// Recovery keeps a panicking handler from taking the process down.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic recovered: %v", r)
				Fail(c, domain.ErrInternal)
			}
		}()
		c.Next()
	}
}

// AccessLog writes one line per request with method, path, status and latency.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infof("%s %s -> %d (%s) %s",
			c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

// Tracing opens an opentracing span per request using the global tracer.
func Tracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()
		spanCtx, _ := tracer.Extract(opentracing.HTTPHeaders,
			opentracing.HTTPHeadersCarrier(c.Request.Header))

		span := tracer.StartSpan(c.Request.Method+" "+c.FullPath(),
			ext.RPCServerOption(spanCtx))
		defer span.Finish()

		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		ext.Component.Set(span, serviceName)

		c.Request = c.Request.WithContext(
			opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
		if c.Writer.Status() >= 500 {
			ext.Error.Set(span, true)
		}
	}
}

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of HTTP requests by service, method, path and status.",
	}, []string{"service", "method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by service, method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "path"})
)

// Metrics records per-request prometheus counters and latencies.
func Metrics(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestsTotal.WithLabelValues(serviceName, c.Request.Method, path,
			strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(serviceName, c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// RateLimit rejects requests once the limiter runs dry.
func RateLimit(limiter middleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context()) {
			Fail(c, domain.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// RequireAuth validates the Bearer token and stores the actor in the
// request context.
func RequireAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			Fail(c, domain.ErrMissingToken)
			return
		}

		actor, err := auth.ParseAccessToken(cfg, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			Fail(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRoles allows the request only when the authenticated actor has one
// of the given roles. Must run after RequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			Fail(c, domain.ErrMissingToken)
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		Fail(c, domain.ErrForbidden)
	}
}

// ActorFrom returns the authenticated actor, or nil on unauthenticated
// routes.
func ActorFrom(c *gin.Context) *auth.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, ok := v.(*auth.Actor)
	if !ok {
		return nil
	}
	return actor
}
