package service

import (
	"testing"

	"github.com/ludo-technologies/sqgate/domain"
)

func TestExplainCondition(t *testing.T) {
	tests := []struct {
		name       string
		actual     string
		threshold  string
		comparator domain.Comparator
		metricType domain.MetricType
		expected   string
	}{
		{"rating out of range stays raw", "8", "test", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (8 is worse than test)"},
		{"rating E", "5", "1", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (E is worse than A)"},
		{"rating D", "4", "1", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (D is worse than A)"},
		{"rating C", "3", "1", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (C is worse than A)"},
		{"rating B", "2", "1", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (B is worse than A)"},
		{"rating ignores comparator", "3", "2", domain.ComparatorLessThan, domain.MetricTypeRating, " (C is worse than B)"},
		{"rating zero stays raw", "0", "1", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (0 is worse than A)"},
		{"work duration minutes", "30", "0", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (0d 0h 30min is greater than 0d 0h 0min)"},
		{"work duration days and hours", "1530", "60", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (1d 1h 30min is greater than 0d 1h 0min)"},
		{"work duration whole decimal", "90.0", "60", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (0d 1h 30min is greater than 0d 1h 0min)"},
		{"work duration malformed", "abc", "60", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (abc is greater than 0d 1h 0min)"},
		{"work duration negative stays raw", "-30", "0", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (-30 is greater than 0d 0h 0min)"},
		{"work duration negative days stay raw", "-1500", "0", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (-1500 is greater than 0d 0h 0min)"},
		{"work duration overflow stays raw", "1e20", "0", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (1e20 is greater than 0d 0h 0min)"},
		{"work duration fraction stays raw", "30.9", "0", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (30.9 is greater than 0d 0h 0min)"},
		{"work duration infinity stays raw", "+Inf", "0", domain.ComparatorGreaterThan, domain.MetricTypeWorkDuration, " (+Inf is greater than 0d 0h 0min)"},
		{"percent rounded", "50.314", "80", domain.ComparatorLessThan, domain.MetricTypePercent, " (50.3% is less than 80%)"},
		{"percent rounds up", "79.96", "80.0", domain.ComparatorLessThan, domain.MetricTypePercent, " (80% is less than 80%)"},
		{"percent malformed", "", "80", domain.ComparatorLessThan, domain.MetricTypePercent, " ( is less than 80%)"},
		{"percent NaN stays raw", "NaN", "80", domain.ComparatorLessThan, domain.MetricTypePercent, " (NaN is less than 80%)"},
		{"percent negative", "-12.34", "0", domain.ComparatorLessThan, domain.MetricTypePercent, " (-12.3% is less than 0%)"},
		{"rating negative stays raw", "-1", "1", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (-1 is worse than A)"},
		{"rating overflow stays raw", "99999999999999999999", "1", domain.ComparatorGreaterThan, domain.MetricTypeRating, " (99999999999999999999 is worse than A)"},
		{"milliseconds", "10000", "5000", domain.ComparatorGreaterThan, domain.MetricTypeMilliseconds, " (10000ms is greater than 5000ms)"},
		{"milliseconds malformed", "abc", "0", domain.ComparatorGreaterThan, domain.MetricTypeMilliseconds, " (abc is greater than 0ms)"},
		{"milliseconds empty", "", "0", domain.ComparatorGreaterThan, domain.MetricTypeMilliseconds, " ( is greater than 0ms)"},
		{"integer", "3", "0", domain.ComparatorGreaterThan, domain.MetricTypeInteger, " (3 is greater than 0)"},
		{"integer less than", "1", "2", domain.ComparatorLessThan, domain.MetricTypeInteger, " (1 is less than 2)"},
		{"unknown type is integer", "1.5", "1", domain.ComparatorGreaterThan, domain.ParseMetricType("FLOAT"), " (1.5 is greater than 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExplainCondition(tt.actual, tt.threshold, tt.comparator, tt.metricType)
			if got != tt.expected {
				t.Errorf("ExplainCondition(%q, %q) = %q, want %q", tt.actual, tt.threshold, got, tt.expected)
			}
		})
	}
}

func TestExplainCondition_Deterministic(t *testing.T) {
	first := ExplainCondition("50.314", "80", domain.ComparatorLessThan, domain.MetricTypePercent)
	for i := 0; i < 10; i++ {
		if got := ExplainCondition("50.314", "80", domain.ComparatorLessThan, domain.MetricTypePercent); got != first {
			t.Errorf("Expected %q on every call, got %q", first, got)
		}
	}
}

func TestRenderPercent_NegativeZero(t *testing.T) {
	got, ok := renderPercent("-0.01")
	if !ok || got != "0%" {
		t.Errorf("renderPercent(-0.01) = %q, %v; want \"0%%\", true", got, ok)
	}
}
