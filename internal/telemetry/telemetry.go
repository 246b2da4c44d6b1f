// Package telemetry 定义服务的 Prometheus 指标
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 服务指标
type Metrics struct {
	annotationWrites *prometheus.CounterVec
	requests         *prometheus.CounterVec
	aggregations     *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
}

// New 创建并注册指标；reg 为 nil 时不注册
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		annotationWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "next_label_annotation_writes_total",
				Help: "Annotation write operations by shape, operation and outcome",
			},
			[]string{"shape", "op", "status"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "next_label_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
		aggregations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "next_label_metrics_aggregation_seconds",
				Help:    "Time spent aggregating project statistics",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"status"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "next_label_metrics_cache_lookups_total",
				Help: "Statistics cache lookups by result",
			},
			[]string{"result"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.annotationWrites, m.requests, m.aggregations, m.cacheLookups} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Nop 未注册的指标，测试使用
func Nop() *Metrics {
	m, _ := New(nil)
	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// AnnotationWrite 记录一次标注写操作
func (m *Metrics) AnnotationWrite(shape, op string, err error) {
	m.annotationWrites.WithLabelValues(shape, op, status(err)).Inc()
}

// Request 记录一次 HTTP 请求
func (m *Metrics) Request(method, route, code string) {
	m.requests.WithLabelValues(method, route, code).Inc()
}

// Aggregation 记录一次统计计算耗时
func (m *Metrics) Aggregation(elapsed time.Duration, err error) {
	m.aggregations.WithLabelValues(status(err)).Observe(elapsed.Seconds())
}

// CacheLookup 记录缓存命中情况
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
