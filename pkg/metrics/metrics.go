// Package metrics Prometheus 指标：HTTP 请求耗时、活跃请求数与业务计数
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "campus_desk"

var (
	orderTransitions = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repair_order",
		Name:      "transitions_total",
		Help:      "工单状态流转次数",
	}, []string{"from", "to"}))

	orderConflicts = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repair_order",
		Name:      "conflicts_total",
		Help:      "工单条件更新未命中（并发冲突）次数",
	}, []string{"operation"}))

	loginAttempts = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "登录尝试次数",
	}, []string{"result"}))

	uploadedFiles = register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "file",
		Name:      "uploads_total",
		Help:      "附件上传次数",
	}, []string{"result"}))
)

// register 注册 collector，重复注册时复用已存在的实例
func register[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveOrderTransition 记录一次工单状态流转
func ObserveOrderTransition(from, to string) {
	orderTransitions.WithLabelValues(from, to).Inc()
}

// ObserveOrderConflict 记录一次工单并发冲突
func ObserveOrderConflict(operation string) {
	orderConflicts.WithLabelValues(operation).Inc()
}

// ObserveLogin 记录登录结果：success / bad_credentials / disabled
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveUpload 记录上传结果：success / rejected / failed
func ObserveUpload(result string) {
	uploadedFiles.WithLabelValues(result).Inc()
}

// ── HTTP 中间件 ──

var (
	httpDuration = register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP 请求耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "pattern", "status"}))

	httpActive = register(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "active_requests",
		Help:      "正在处理的 HTTP 请求数",
	}))
)

// GinMiddleware 采集请求耗时与活跃请求数，按命中的路由模板打标签
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpActive.Inc()

		defer func() {
			httpActive.Dec()
			pattern := c.FullPath()
			if pattern == "" {
				pattern = "unmatched"
			}
			httpDuration.WithLabelValues(
				c.Request.Method,
				pattern,
				strconv.Itoa(c.Writer.Status()),
			).Observe(time.Since(start).Seconds())
		}()

		c.Next()
	}
}
