package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ludo-technologies/sqgate/domain"
)

// Work duration decomposition, in minutes
const (
	minutesPerDay  = 1440
	minutesPerHour = 60
)

// Explanation verbs
const (
	verbGreaterThan = "is greater than"
	verbLessThan    = "is less than"
	verbWorseThan   = "is worse than"
)

var ratingLetters = [...]string{"A", "B", "C", "D", "E"}

// ExplainCondition renders why a condition failed, e.g. " (50.3% is less than 80%)".
// Values that do not parse for their metric type are rendered as reported.
func ExplainCondition(actualValue, errorThreshold string, comparator domain.Comparator, metricType domain.MetricType) string {
	render := renderer(metricType)
	return fmt.Sprintf(" (%s %s %s)", render(actualValue), explanationVerb(comparator, metricType), render(errorThreshold))
}

// explanationVerb returns the comparison phrase. Ratings are ordinal letters
// and always read "is worse than".
func explanationVerb(comparator domain.Comparator, metricType domain.MetricType) string {
	if metricType == domain.MetricTypeRating {
		return verbWorseThan
	}
	if comparator == domain.ComparatorGreaterThan {
		return verbGreaterThan
	}
	return verbLessThan
}

func renderer(metricType domain.MetricType) func(string) string {
	switch metricType {
	case domain.MetricTypeRating:
		return orRaw(renderRating)
	case domain.MetricTypeWorkDuration:
		return orRaw(renderWorkDuration)
	case domain.MetricTypePercent:
		return orRaw(renderPercent)
	case domain.MetricTypeMilliseconds:
		return orRaw(renderMilliseconds)
	default:
		return renderRaw
	}
}

// orRaw falls back to the raw value when render cannot parse it
func orRaw(render func(string) (string, bool)) func(string) string {
	return func(raw string) string {
		if s, ok := render(raw); ok {
			return s
		}
		return raw
	}
}

func renderRating(raw string) (string, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(ratingLetters) {
		return "", false
	}
	return ratingLetters[n-1], true
}

// renderWorkDuration accepts whole non-negative minutes only, "90.0" included
func renderWorkDuration(raw string) (string, bool) {
	minutes, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) || f < 0 || f >= math.MaxInt64 {
			return "", false
		}
		minutes = int64(f)
	}
	if minutes < 0 {
		return "", false
	}
	days := minutes / minutesPerDay
	hours := (minutes % minutesPerDay) / minutesPerHour
	return fmt.Sprintf("%dd %dh %dmin", days, hours, minutes%minutesPerHour), true
}

func renderPercent(raw string) (string, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	rounded := math.Round(f*10) / 10
	if rounded == 0 {
		rounded = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + "%", true
}

func renderMilliseconds(raw string) (string, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return raw + "ms", true
}

func renderRaw(raw string) string {
	return raw
}
