package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records scan metrics using Prometheus.
type Recorder struct {
	scanDuration  *prometheus.HistogramVec
	scanErrors    *prometheus.CounterVec
	tradesEmitted *prometheus.CounterVec
	lastSpot      *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scanDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "structscan_scan_duration_seconds",
				Help:    "Duration of a single symbol scan",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
		scanErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "structscan_scan_errors_total",
				Help: "Total scan errors by symbol and kind",
			},
			[]string{"symbol", "kind"},
		),
		tradesEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "structscan_trades_emitted_total",
				Help: "Trade candidates emitted per symbol and model",
			},
			[]string{"symbol", "model"},
		),
		lastSpot: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "structscan_last_spot_price",
				Help: "Last spot price used for a symbol scan",
			},
			[]string{"symbol"},
		),
	}
}

// RecordScanDuration records the wall time of a symbol scan.
func (r *Recorder) RecordScanDuration(symbol string, seconds float64) {
	r.scanDuration.WithLabelValues(symbol).Observe(seconds)
}

// RecordScanError records a scan failure by kind.
func (r *Recorder) RecordScanError(symbol, kind string) {
	r.scanErrors.WithLabelValues(symbol, kind).Inc()
}

// RecordTradesEmitted adds to the per-model trade counter.
func (r *Recorder) RecordTradesEmitted(symbol, model string, n int) {
	if n <= 0 {
		return
	}
	r.tradesEmitted.WithLabelValues(symbol, model).Add(float64(n))
}

// RecordSpot records the spot price a scan resolved for a symbol.
func (r *Recorder) RecordSpot(symbol string, price float64) {
	r.lastSpot.WithLabelValues(symbol).Set(price)
}
