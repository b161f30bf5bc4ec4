package svg

import (
	"fmt"
	"math"
	"strings"
)

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	minVal := series[0]
	maxVal := series[0]
	for _, v := range series[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

// formatTick renders an axis value. Values are already scaled by the
// caller, so only the sign and precision are decided here.
func formatTick(v float64, prefix, suffix string) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	abs := math.Abs(v)
	var digits string
	if almostEqual(abs, math.Round(abs)) {
		digits = fmt.Sprintf("%.0f", abs)
	} else {
		digits = fmt.Sprintf("%.1f", abs)
	}
	return sign + prefix + digits + suffix
}
