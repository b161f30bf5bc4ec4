package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("report_warmup").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("report_warmup").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("report_warmup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("report_warmup", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("report_warmup")))
}

func TestAddOwnersIgnoresEmptyCounts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddOwners("report_warmup", "warmed", 3)
	m.AddOwners("report_warmup", "warmed", 0)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.owners.WithLabelValues("report_warmup", "warmed")))

	var nilMetrics *Metrics
	nilMetrics.AddOwners("report_warmup", "warmed", 1)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
