package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global metrics container exposed under the kgls_ namespace.
type Metrics struct {
	OperatorDuration *prometheus.HistogramVec
	OperatorMoves    *prometheus.CounterVec

	BestCost        prometheus.Gauge
	BestGapPercent  prometheus.Gauge
	IterationsTotal prometheus.Counter

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics registers the kgls metrics under the given namespace/subsystem.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		OperatorDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operator_duration_seconds",
				Help:      "Cumulative time spent inside each search operator",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"operator"},
		),

		OperatorMoves: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operator_moves_total",
				Help:      "Total number of moves executed per operator",
			},
			[]string{"operator"},
		),

		BestCost: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "best_cost",
				Help:      "Cost of the best solution found so far",
			},
		),

		BestGapPercent: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "best_gap_percent",
				Help:      "Gap between the best found solution and the known best solution, in percent",
			},
		),

		IterationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iterations_total",
				Help:      "Total number of improve/perturbate cycles executed",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_info",
				Help:      "Run metadata",
			},
			[]string{"version", "run_id"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics, initializing them with defaults if needed.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("kgls", "")
	}
	return defaultMetrics
}

// RecordOperator records the duration and move count of one operator pass.
func (m *Metrics) RecordOperator(operator string, duration time.Duration, moves int) {
	m.OperatorDuration.WithLabelValues(operator).Observe(duration.Seconds())
	if moves > 0 {
		m.OperatorMoves.WithLabelValues(operator).Add(float64(moves))
	}
}

// RecordIteration records one improve/perturbate cycle and the resulting
// best cost / gap-to-BKS.
func (m *Metrics) RecordIteration(bestCost float64, gapPercent float64) {
	m.IterationsTotal.Inc()
	m.BestCost.Set(bestCost)
	m.BestGapPercent.Set(gapPercent)
}

// SetRunInfo sets the run_info gauge identifying this run.
func (m *Metrics) SetRunInfo(version, runID string) {
	m.ServiceInfo.WithLabelValues(version, runID).Set(1)
}

// Handler returns the HTTP handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a blocking HTTP server exposing /metrics and /health;
// cmd/kgls runs it in a background goroutine when metrics are enabled.
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
