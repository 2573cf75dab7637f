package models

import (
	"fmt"
	"time"
)

type Metric string

const (
	MetricJobCount     Metric = "job_count"
	MetricMedianSalary Metric = "median_salary"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricJobCount, MetricMedianSalary:
		return m, nil
	case "":
		return MetricJobCount, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Complement returns the metric shown alongside m in tooltips.
func (m Metric) Complement() Metric {
	if m == MetricJobCount {
		return MetricMedianSalary
	}
	return MetricJobCount
}

func (m Metric) Label() string {
	if m == MetricJobCount {
		return "Number of Job Posts"
	}
	return "Median Salary"
}

// FilterSelection is the year and facet constraints chosen by the user.
// A facet that is absent or set to NotAvailable is not filtered.
type FilterSelection struct {
	Year   int              `json:"year"`
	Facets map[Facet]string `json:"facets,omitempty"`
}

// Constraints returns the facets that actually filter, in Facets order.
func (s FilterSelection) Constraints() []Facet {
	var constrained []Facet
	for _, f := range Facets {
		if v, ok := s.Facets[f]; ok && v != NotAvailable {
			constrained = append(constrained, f)
		}
	}
	return constrained
}

// MonthlySummaryPoint aggregates the filtered postings of one month.
type MonthlySummaryPoint struct {
	Date         time.Time `json:"date"`
	JobCount     int       `json:"job_count"`
	MedianSalary float64   `json:"median_salary"`
	MeanSalary   float64   `json:"mean_salary"`
}

func (p MonthlySummaryPoint) Value(m Metric) float64 {
	if m == MetricJobCount {
		return float64(p.JobCount)
	}
	return p.MedianSalary
}

type SummaryRequest struct {
	Selection FilterSelection `json:"selection"`
	Metric    Metric          `json:"metric"`
}

// SummaryUpdate is the event published after a summary is computed.
type SummaryUpdate struct {
	Request     SummaryRequest        `json:"request"`
	Points      []MonthlySummaryPoint `json:"points"`
	GeneratedAt time.Time             `json:"generated_at"`
}
