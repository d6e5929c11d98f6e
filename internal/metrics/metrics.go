// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordLogin(newUser bool)
	RecordTokenRefresh()
	RecordLogout()
	RecordTokensCleaned(count int)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins         *prometheus.CounterVec
	tokenRefresh   prometheus.Counter
	logouts        prometheus.Counter
	tokensCleaned  prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listman_login_total",
			Help: "ログイン成功の合計数（新規/既存ユーザー別）",
		}, []string{"user_type"}),
		tokenRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listman_token_refresh_total",
			Help: "アクセストークン再発行の合計数",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listman_logout_total",
			Help: "ログアウトの合計数",
		}),
		tokensCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listman_refresh_tokens_cleaned_total",
			Help: "クリーンアップで削除された期限切れリフレッシュトークンの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "listman_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.tokenRefresh,
		c.logouts,
		c.tokensCleaned,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordLogin はログイン成功を記録する。新規ユーザー作成を伴うログインは
// user_type=newとして区別する。
func (c *Collector) RecordLogin(newUser bool) {
	userType := "existing"
	if newUser {
		userType = "new"
	}
	c.logins.WithLabelValues(userType).Inc()
}

// RecordTokenRefresh はアクセストークンの再発行を記録する。
func (c *Collector) RecordTokenRefresh() {
	c.tokenRefresh.Inc()
}

// RecordLogout はログアウトを記録する。
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// RecordTokensCleaned はクリーンアップで削除されたトークン数を記録する。
func (c *Collector) RecordTokensCleaned(count int) {
	c.tokensCleaned.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
