// Package chart turns monthly summary points into a line chart description
// and renders it.
package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/aclements/go-moremath/scale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

// Mode selects how the x domain is derived.
type Mode string

const (
	// DomainYear spans the whole selected year.
	DomainYear Mode = "year"
	// DomainExtent spans the data, widened around a single instant.
	DomainExtent Mode = "extent"
)

const (
	XLabel = "Posting Month"

	extentPadding = 15 * 24 * time.Hour
	maxYTicks     = 10
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case DomainYear, DomainExtent:
		return m, nil
	case "":
		return DomainYear, nil
	}
	return "", fmt.Errorf("unknown chart domain %q", s)
}

type Point struct {
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Tooltip string    `json:"tooltip"`
}

// Spec is everything needed to draw one trend chart.
type Spec struct {
	Metric models.Metric `json:"metric"`
	Year   int           `json:"year"`
	Title  string        `json:"title"`
	XLabel string        `json:"x_label"`
	YLabel string        `json:"y_label"`
	XMin   time.Time     `json:"x_min"`
	XMax   time.Time     `json:"x_max"`
	YMax   float64       `json:"y_max"`
	Points []Point       `json:"points"`
}

func (s Spec) Empty() bool {
	return len(s.Points) == 0
}

// Build lays out points for metric. Points must be in date order, as
// returned by the aggregate package.
func Build(points []models.MonthlySummaryPoint, metric models.Metric, year int, mode Mode) Spec {
	spec := Spec{
		Metric: metric,
		Year:   year,
		Title:  fmt.Sprintf("%s, %d", metric.Label(), year),
		XLabel: XLabel,
		YLabel: metric.Label(),
		Points: make([]Point, 0, len(points)),
	}

	p := message.NewPrinter(language.English)
	top := 0.0
	for _, pt := range points {
		v := pt.Value(metric)
		if v > top {
			top = v
		}
		spec.Points = append(spec.Points, Point{
			Date:    pt.Date,
			Value:   v,
			Tooltip: tooltip(p, pt, metric),
		})
	}

	spec.XMin, spec.XMax = xDomain(points, year, mode)
	spec.YMax = niceMax(top)
	return spec
}

func xDomain(points []models.MonthlySummaryPoint, year int, mode Mode) (time.Time, time.Time) {
	if mode != DomainExtent || len(points) == 0 {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	lo, hi := points[0].Date, points[0].Date
	for _, pt := range points[1:] {
		if pt.Date.Before(lo) {
			lo = pt.Date
		}
		if pt.Date.After(hi) {
			hi = pt.Date
		}
	}
	if lo.Equal(hi) {
		return lo.Add(-extentPadding), hi.Add(extentPadding)
	}
	return lo, hi
}

// niceMax rounds top up to the next major tick of [0, top].
func niceMax(top float64) float64 {
	if top <= 0 || math.IsNaN(top) || math.IsInf(top, 0) {
		return 1
	}
	ls := scale.Linear{Min: 0, Max: top}
	major, _ := ls.Ticks(scale.TickOptions{Max: maxYTicks})
	if len(major) < 2 {
		return top
	}
	step := major[1] - major[0]
	return math.Ceil(top/step) * step
}

func tooltip(p *message.Printer, pt models.MonthlySummaryPoint, metric models.Metric) string {
	return fmt.Sprintf("%s\n%s: %s\n%s: %s",
		pt.Date.Format("January 2006"),
		metric.Label(), formatValue(p, pt, metric),
		metric.Complement().Label(), formatValue(p, pt, metric.Complement()))
}

func formatValue(p *message.Printer, pt models.MonthlySummaryPoint, metric models.Metric) string {
	if metric == models.MetricJobCount {
		return p.Sprintf("%d", pt.JobCount)
	}
	if pt.MedianSalary == math.Trunc(pt.MedianSalary) {
		return p.Sprintf("$%.0f", pt.MedianSalary)
	}
	return p.Sprintf("$%.2f", pt.MedianSalary)
}
