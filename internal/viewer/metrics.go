package viewer

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// viewerMetrics holds Prometheus metrics for the viewer message channel.
type viewerMetrics struct {
	messagesSent     *prometheus.CounterVec
	messagesDeferred *prometheus.CounterVec
	sendFailures     *prometheus.CounterVec
}

var (
	viewerMetricsOnce   sync.Once
	globalViewerMetrics *viewerMetrics
)

// getViewerMetrics initializes viewer channel metrics if they haven't been,
// and returns them. This ensures metrics are registered only once.
func getViewerMetrics() *viewerMetrics {
	viewerMetricsOnce.Do(func() {
		globalViewerMetrics = &viewerMetrics{
			messagesSent: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "viewer_messages_sent_total",
				Help: "Total number of messages delivered to the viewer by type",
			}, []string{"message_type"}),
			messagesDeferred: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "viewer_messages_deferred_total",
				Help: "Total number of updates parked because the viewer was not ready",
			}, []string{"message_type"}),
			sendFailures: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "viewer_message_send_failures_total",
				Help: "Total number of viewer message deliveries that failed",
			}, []string{"message_type"}),
		}
	})
	return globalViewerMetrics
}
