package dispatcher

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// dispatcherMetrics holds Prometheus metrics for native event dispatch.
type dispatcherMetrics struct {
	eventsDispatched *prometheus.CounterVec
	eventsDiscarded  *prometheus.CounterVec
	adaptedErrors    *prometheus.CounterVec
	dispatchLatency  prometheus.Histogram
}

var (
	dispatcherMetricsOnce   sync.Once
	globalDispatcherMetrics *dispatcherMetrics
)

// getDispatcherMetrics initializes dispatch metrics if they haven't been, and
// returns them. This ensures metrics are registered only once.
func getDispatcherMetrics() *dispatcherMetrics {
	dispatcherMetricsOnce.Do(func() {
		globalDispatcherMetrics = &dispatcherMetrics{
			eventsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "native_events_dispatched_total",
				Help: "Total number of native events dispatched by type",
			}, []string{"event_type"}),
			eventsDiscarded: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "native_events_discarded_total",
				Help: "Total number of native events discarded by reason",
			}, []string{"reason"}),
			adaptedErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "positioning_errors_adapted_total",
				Help: "Total number of positioning errors adapted by resulting code",
			}, []string{"code"}),
			dispatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "native_event_dispatch_duration_seconds",
				Help:    "Time taken to dispatch a native event",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
		}
	})
	return globalDispatcherMetrics
}
