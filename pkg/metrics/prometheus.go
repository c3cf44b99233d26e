package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder 监控循环的 Prometheus 指标。
// promauto 注册到默认 registry, 进程内只应创建一次。
type Recorder struct {
	cyclesTotal      *prometheus.CounterVec
	signalsTotal     *prometheus.CounterVec
	deliveryFailures *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	cycleDuration    prometheus.Histogram
}

func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "option_monitor_cycles_total",
				Help: "Total number of per-instrument monitor cycles",
			},
			[]string{"symbol", "status"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "option_monitor_signals_total",
				Help: "Total number of strategy signals emitted",
			},
			[]string{"symbol", "strategy"},
		),
		deliveryFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "option_monitor_delivery_failures_total",
				Help: "Total number of failed notification deliveries",
			},
			[]string{"channel"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "option_monitor_last_price",
				Help: "Last observed spot price for a symbol",
			},
			[]string{"symbol"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "option_monitor_cycle_duration_seconds",
				Help:    "Duration of one full RunOnce pass in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (r *Recorder) RecordCycle(symbol string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	r.cyclesTotal.WithLabelValues(symbol, status).Inc()
}

func (r *Recorder) RecordSignal(symbol, strategy string) {
	r.signalsTotal.WithLabelValues(symbol, strategy).Inc()
}

func (r *Recorder) RecordDeliveryFailure(channel string) {
	r.deliveryFailures.WithLabelValues(channel).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordCycleDuration(seconds float64) {
	r.cycleDuration.Observe(seconds)
}
