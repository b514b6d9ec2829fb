package ollama

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	daemonRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medspresso",
			Subsystem: "daemon",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the inference daemon",
		},
		[]string{"op", "outcome"},
	)

	daemonRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medspresso",
			Subsystem: "daemon",
			Name:      "request_duration_seconds",
			Help:      "Time until the daemon answered with response headers",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	streamChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "medspresso",
			Subsystem: "daemon",
			Name:      "stream_chunks_total",
			Help:      "Generated text chunks received over streaming responses",
		},
	)

	malformedLinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "medspresso",
			Subsystem: "daemon",
			Name:      "malformed_lines_total",
			Help:      "Streamed lines skipped because they could not be decoded",
		},
	)
)

func init() {
	prometheus.MustRegister(daemonRequestsTotal, daemonRequestDuration, streamChunksTotal, malformedLinesTotal)
}

// observe records the outcome of one daemon exchange.
func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	daemonRequestsTotal.WithLabelValues(op, outcome).Inc()
	daemonRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
