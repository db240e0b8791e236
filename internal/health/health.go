// Package health derives a component's health from its metrics.
//
// The derived status is advisory. It never overwrites the persisted
// Component.HealthStatus, which users set directly; callers that show both
// must show them as separate values.
package health

import (
	"math"
	"strconv"
	"strings"

	"github.com/zulandar/processmap/internal/models"
)

// Thresholds on the fraction of metrics meeting their target.
const (
	GreenThreshold  = 0.9
	YellowThreshold = 0.7
)

// Reading is the free-text current/target pair of one metric. Empty means absent.
type Reading struct {
	Current string
	Target  string
}

// FromMetrics converts stored metrics to readings.
func FromMetrics(metrics []models.Metric) []Reading {
	out := make([]Reading, len(metrics))
	for i, m := range metrics {
		if m.Current != nil {
			out[i].Current = *m.Current
		}
		if m.Target != nil {
			out[i].Target = *m.Target
		}
	}
	return out
}

// Classify maps readings to GREEN, YELLOW, RED, or GRAY (no readings).
// It never returns BLUE.
func Classify(readings []Reading) models.HealthStatus {
	if len(readings) == 0 {
		return models.HealthGray
	}
	met := 0
	for _, r := range readings {
		if MeetsTarget(r) {
			met++
		}
	}
	p := float64(met) / float64(len(readings))
	switch {
	case p >= GreenThreshold:
		return models.HealthGreen
	case p >= YellowThreshold:
		return models.HealthYellow
	default:
		return models.HealthRed
	}
}

// MeetsTarget reports whether both values parse and current >= target.
func MeetsTarget(r Reading) bool {
	current, ok := ParseNumeric(r.Current)
	if !ok {
		return false
	}
	target, ok := ParseNumeric(r.Target)
	if !ok {
		return false
	}
	return current >= target
}

// ParseNumeric keeps only digits, '-' and '.', then parses the longest
// leading number of the rest. "3hrs" is 3, "98.5%" is 98.5, "$1,200" is
// 1200, "10-15 min" is 10 and "1.2.3" is 1.2.
func ParseNumeric(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, s)
	n := numericPrefix(cleaned)
	if n == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned[:n], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numericPrefix returns the length of the leading -?digits[.digits] or
// -?.digits in s, or 0 when there is none.
func numericPrefix(s string) int {
	isDigit := func(i int) bool { return i < len(s) && s[i] >= '0' && s[i] <= '9' }

	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for isDigit(i) {
		i++
	}
	intDigits := i - start
	if i < len(s) && s[i] == '.' && isDigit(i+1) {
		i++
		for isDigit(i) {
			i++
		}
		return i
	}
	if intDigits == 0 {
		return 0
	}
	return i
}

// scoreWeights converts a persisted status into a 0-100 score.
var scoreWeights = map[models.HealthStatus]float64{
	models.HealthGreen:  100,
	models.HealthYellow: 60,
	models.HealthRed:    20,
	models.HealthGray:   50,
	models.HealthBlue:   70,
}

// OverallScore is the rounded mean weight of statuses, or 0 when empty.
// Unknown statuses weigh as GRAY.
func OverallScore(statuses []models.HealthStatus) int {
	if len(statuses) == 0 {
		return 0
	}
	var sum float64
	for _, s := range statuses {
		w, ok := scoreWeights[s]
		if !ok {
			w = scoreWeights[models.HealthGray]
		}
		sum += w
	}
	return int(math.Round(sum / float64(len(statuses))))
}

// Breakdown counts statuses. Every known status has a key.
func Breakdown(statuses []models.HealthStatus) map[models.HealthStatus]int {
	out := make(map[models.HealthStatus]int, len(models.HealthStatuses))
	for _, s := range models.HealthStatuses {
		out[s] = 0
	}
	for _, s := range statuses {
		if s.Valid() {
			out[s]++
		}
	}
	return out
}
