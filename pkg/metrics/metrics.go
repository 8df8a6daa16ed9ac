// Package metrics 访问控制与登录的 Prometheus 指标
//
// 拒绝原因只出现在指标标签与服务端日志里,不会返回给调用方。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 访问控制决策
const (
	DecisionForwarded = "forwarded"
	DecisionLogin     = "login"
	DecisionDenied    = "denied"
)

var (
	// AccessDecisionsTotal 按结果与原因统计访问控制决策
	AccessDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysauth_access_decisions_total",
			Help: "Total number of access-control decisions",
		},
		[]string{"decision", "reason"},
	)

	// LoginAttemptsTotal 按结果统计登录尝试
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysauth_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LoginThrottledTotal 被限流拒绝的登录请求
	LoginThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sysauth_login_throttled_total",
			Help: "Total number of login requests rejected by the rate limiter",
		},
	)
)

// RecordDecision 记录访问控制决策
func RecordDecision(decision, reason string) {
	AccessDecisionsTotal.WithLabelValues(decision, reason).Inc()
}

// RecordLogin 记录登录结果
func RecordLogin(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}
