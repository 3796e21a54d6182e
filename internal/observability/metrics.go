package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uartctl",
			Subsystem: "session",
			Name:      "frames_sent_total",
			Help:      "Frames written to the transport, by variant label.",
		},
		[]string{"variant"},
	)
	bytesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uartctl",
			Subsystem: "session",
			Name:      "bytes_written_total",
			Help:      "Frame bytes written to the transport, by variant label.",
		},
		[]string{"variant"},
	)
	writeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uartctl",
			Subsystem: "session",
			Name:      "write_failures_total",
			Help:      "Transport write failures, by variant label.",
		},
		[]string{"variant"},
	)
	logSinkFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "uartctl",
			Subsystem: "logsink",
			Name:      "append_failures_total",
			Help:      "Event log append failures (best-effort channel).",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesSent, bytesWritten, writeFailures, logSinkFailures)
	})
}

func RecordFrameSent(variant string, bytes int) {
	RegisterMetrics()
	framesSent.WithLabelValues(variant).Inc()
	bytesWritten.WithLabelValues(variant).Add(float64(bytes))
}

func RecordWriteFailure(variant string) {
	RegisterMetrics()
	writeFailures.WithLabelValues(variant).Inc()
}

func RecordLogSinkFailure() {
	RegisterMetrics()
	logSinkFailures.Inc()
}
