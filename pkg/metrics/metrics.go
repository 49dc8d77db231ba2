package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 应用 Prometheus 指标
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	EntrySubmissions *prometheus.CounterVec
	UnlockAttempts   *prometheus.CounterVec
}

// New 在给定注册表上注册全部指标；reg 为 nil 时使用默认注册表
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sps_http_requests_total",
			Help: "HTTP 请求总数",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sps_http_request_duration_seconds",
			Help:    "HTTP 请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		EntrySubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sps_entry_submissions_total",
			Help: "日志提交次数，按结果分类",
		}, []string{"outcome"}),
		UnlockAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sps_entry_unlock_attempts_total",
			Help: "覆盖授权尝试次数，按结果分类",
		}, []string{"result"}),
	}
}

// ObserveSubmission 记录一次提交结果（created / replaced / unchanged / conflict / denied）
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.EntrySubmissions.WithLabelValues(outcome).Inc()
}

// ObserveUnlock 记录一次授权尝试
func (m *Metrics) ObserveUnlock(granted bool) {
	if m == nil {
		return
	}
	result := "denied"
	if granted {
		result = "granted"
	}
	m.UnlockAttempts.WithLabelValues(result).Inc()
}
