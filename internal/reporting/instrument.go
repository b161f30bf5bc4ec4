package reporting

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeFresh      = "fresh"
	outcomeDiscarded  = "discarded"
	outcomeSuperseded = "superseded"
	outcomeFallback   = "fallback"
)

// Metrics counts report runs by outcome.
type Metrics struct {
	runs *prometheus.CounterVec
}

// NewMetrics registers the report collectors. A nil registerer uses the
// default Prometheus registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ownerdesk_report_runs_total",
		Help: "Report pipeline runs partitioned by report and outcome.",
	}, []string{"report", "outcome"})
	registerer.MustRegister(runs)
	return &Metrics{runs: runs}
}

func (m *Metrics) observe(report, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(report, outcome).Inc()
}
