package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected" // check digits did not hold
	OutcomeGated    = "gated"
	OutcomeNoise    = "noise" // not readable as MRZ
	OutcomeFailed   = "failed"
)

// Metrics provides observability for MRZ scanning.
type Metrics struct {
	Frames              *prometheus.CounterVec
	Repairs             prometheus.Counter
	ScansAccepted       *prometheus.CounterVec
	ScansFinished       *prometheus.CounterVec
	FramesUntilAccepted prometheus.Histogram
	ScanDuration        prometheus.Histogram
	ActiveSessions      prometheus.Gauge
}

// New creates the scanner metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Frames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mrz_scanner_frames_total",
			Help: "Frames submitted to scan sessions, by outcome",
		}, []string{"outcome"}),
		Repairs: f.NewCounter(prometheus.CounterOpts{
			Name: "mrz_scanner_document_number_repairs_total",
			Help: "Accepted records whose document number needed a 0/O repair",
		}),
		ScansAccepted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mrz_scanner_scans_accepted_total",
			Help: "Accepted scans, by MRZ format",
		}, []string{"format"}),
		ScansFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mrz_scanner_scans_finished_total",
			Help: "Finished scan sessions, by final status",
		}, []string{"status"}),
		FramesUntilAccepted: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mrz_scanner_frames_until_accepted",
			Help:    "Number of frames a session needed before a record was accepted",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mrz_scanner_scan_duration_seconds",
			Help:    "Time from session start to acceptance",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60, 120},
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "mrz_scanner_active_sessions",
			Help: "Scan sessions still accepting frames",
		}),
	}
}

// ObserveFrame counts one frame by outcome.
func (m *Metrics) ObserveFrame(outcome string) {
	m.Frames.WithLabelValues(outcome).Inc()
}

// ObserveAccepted records an accepted scan that took elapsed from session
// start to acceptance.
func (m *Metrics) ObserveAccepted(format string, frames int, repaired bool, elapsed time.Duration) {
	m.ScansAccepted.WithLabelValues(format).Inc()
	m.FramesUntilAccepted.Observe(float64(frames))
	m.ScanDuration.Observe(elapsed.Seconds())
	if repaired {
		m.Repairs.Inc()
	}
}

// SessionStarted increments the active session gauge.
func (m *Metrics) SessionStarted() {
	m.ActiveSessions.Inc()
}

// SessionFinished records the final status and decrements the gauge.
func (m *Metrics) SessionFinished(status string) {
	m.ScansFinished.WithLabelValues(status).Inc()
	m.ActiveSessions.Dec()
}
