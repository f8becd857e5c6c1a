package alock

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// WarnThreshold is the contended-wait duration above which a perfwarn
// interval logs at Warn level (shorter waits log at Debug). Metrics are
// recorded regardless of the threshold.
//
// Set it, and the logger via SetLogger, before the first LockWarn call;
// neither is synchronized.
var WarnThreshold = 100 * time.Millisecond

var warnLog = slog.Default()

// SetLogger replaces the logger used for perfwarn events.
func SetLogger(l *slog.Logger) {
	warnLog = l
}

type perfMetrics struct {
	openIntervals prometheus.Gauge
	waitSeconds   *prometheus.HistogramVec
	intervalsEnd  *prometheus.CounterVec
}

var metrics = newPerfMetrics()

func newPerfMetrics() *perfMetrics {
	m := &perfMetrics{
		openIntervals: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alock_perfwarn_open_intervals",
			Help: "Number of perfwarn intervals currently open (contended waits in flight)",
		}),
		waitSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alock_perfwarn_wait_seconds",
				Help:    "Duration of perfwarn-bracketed lock waits",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs .. ~4s
			},
			[]string{"op"},
		),
		intervalsEnd: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alock_perfwarn_intervals_total",
				Help: "Completed perfwarn intervals by outcome",
			},
			[]string{"op", "outcome"},
		),
	}

	prometheus.MustRegister(
		m.openIntervals,
		m.waitSeconds,
		m.intervalsEnd,
	)

	return m
}

// perfInterval brackets one suspected-slow wait. Purely observational: it
// never touches the lock state and never changes the acquisition outcome.
type perfInterval struct {
	op    string
	id    uuid.UUID
	begin time.Time
	ended bool
}

func beginPerfWarn(op string) *perfInterval {
	iv := &perfInterval{op: op, id: uuid.New(), begin: time.Now()}
	metrics.openIntervals.Inc()
	warnLog.Debug("perfwarn interval open",
		"op", iv.op,
		"interval", iv.id,
	)
	return iv
}

// end closes the interval. Idempotent: only the first call records.
func (iv *perfInterval) end(outcome string) {
	if iv.ended {
		return
	}
	iv.ended = true

	elapsed := time.Since(iv.begin)
	metrics.openIntervals.Dec()
	metrics.waitSeconds.WithLabelValues(iv.op).Observe(elapsed.Seconds())
	metrics.intervalsEnd.WithLabelValues(iv.op, outcome).Inc()

	if elapsed >= WarnThreshold {
		warnLog.Warn("slow lock acquisition",
			"op", iv.op,
			"interval", iv.id,
			"elapsed", elapsed,
			"outcome", outcome,
		)
		return
	}
	warnLog.Debug("perfwarn interval close",
		"op", iv.op,
		"interval", iv.id,
		"elapsed", elapsed,
		"outcome", outcome,
	)
}
