package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []float64{50, 62.5}, []float64{45, -3}, []string{"Nov", "Dec"}, BarOpts{
		Title:      "Revenue Trend",
		TickPrefix: "₹",
		TickSuffix: "k",
	})
	require.NoError(t, err)
	output := string(html)
	assert.True(t, strings.HasPrefix(output, "<svg"))
	assert.Equal(t, 4, strings.Count(output, "aria-label=\"Revenue ")+strings.Count(output, "aria-label=\"Net "))
	assert.Contains(t, output, "revenue-trend-bar-title")
	assert.Contains(t, output, "₹62.5k")
	assert.Contains(t, output, ">Dec</text>")
}

func TestBarsRejectsMismatchedSeries(t *testing.T) {
	_, err := Bars(0, 0, []float64{1, 2}, nil, []string{"Jan"}, BarOpts{})
	assert.Error(t, err)
	_, err = Bars(0, 0, nil, nil, []string{"Jan"}, BarOpts{})
	assert.Error(t, err)
	_, err = Bars(10, 10, []float64{1}, nil, []string{"Jan"}, BarOpts{Padding: 20})
	assert.Error(t, err)
}

func TestBarsAllZeroStillRenders(t *testing.T) {
	html, err := Bars(0, 0, []float64{0, 0, 0}, []float64{0, 0, 0}, []string{"Jul", "Aug", "Sep"}, BarOpts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "height=\"0.00\"")
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "₹12k", formatTick(12, "₹", "k"))
	assert.Equal(t, "-₹2.5k", formatTick(-2.5, "₹", "k"))
	assert.Equal(t, "0", formatTick(0, "", ""))
}
