// Package metrics は Prometheus のメトリクスをまとめる。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"foodplaza/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodplaza"

type Metrics struct {
	OrdersCreated     prometheus.Counter
	CreateFailures    *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	Requests          *prometheus.CounterVec
	LatencyMS         *prometheus.HistogramVec
}

// New はメトリクスを作って reg に登録する。テストでは prometheus.NewRegistry() を渡す。
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// local_id ラベルは付けない。店舗別の件数は orders テーブルから集計する
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}),
		CreateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_create_failures_total",
			Help:      "Total number of rejected or failed order creations.",
		}, []string{"reason"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Total number of order status transitions.",
		}, []string{"from", "to"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "route"}),
	}

	reg.MustRegister(m.OrdersCreated, m.CreateFailures, m.StatusTransitions, m.Requests, m.LatencyMS)
	return m
}

func (m *Metrics) OrderCreated() {
	m.OrdersCreated.Inc()
}

func (m *Metrics) OrderCreateFailed(reason string) {
	m.CreateFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) StatusChanged(from, to model.OrderStatus) {
	m.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveRequest は route（echo のパスパターン）単位で記録する。
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(method, route).Observe(float64(elapsed.Milliseconds()))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
