// Package aggregate turns normalized posting records into the monthly
// series drawn by the trend charts.
package aggregate

import (
	"sort"
	"time"

	"github.com/aclements/go-moremath/stats"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

func (k monthKey) date() time.Time {
	return time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC)
}

type bucket struct {
	count    int
	salaries []float64
}

// Summarize filters records by sel and returns one point per month that
// still has postings, ordered by month. The result is never nil.
func Summarize(records []models.NormalizedRecord, sel models.FilterSelection) []models.MonthlySummaryPoint {
	filtered := Filter(records, sel)

	eligible := make(map[monthKey]struct{}, 12)
	for _, r := range filtered {
		eligible[keyOf(r.PostingMonth)] = struct{}{}
	}

	buckets := make(map[monthKey]*bucket, len(eligible))
	for _, r := range filtered {
		k := keyOf(r.PostingMonth)
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.count++
		if r.HasSalary() {
			b.salaries = append(b.salaries, r.Salary)
		}
	}

	points := make([]models.MonthlySummaryPoint, 0, len(buckets))
	for k, b := range buckets {
		// Empty months are never synthesized.
		if _, ok := eligible[k]; !ok {
			continue
		}
		points = append(points, models.MonthlySummaryPoint{
			Date:         k.date(),
			JobCount:     b.count,
			MedianSalary: Median(b.salaries),
			MeanSalary:   Mean(b.salaries),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// Filter returns the records posted in sel.Year that match every
// constrained facet.
func Filter(records []models.NormalizedRecord, sel models.FilterSelection) []models.NormalizedRecord {
	constrained := sel.Constraints()

	var filtered []models.NormalizedRecord
next:
	for _, r := range records {
		if r.PostingMonth.Year() != sel.Year {
			continue
		}
		for _, f := range constrained {
			if f.Value(r) != sel.Facets[f] {
				continue next
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// Median returns the median of xs, averaging the two middle values when
// len(xs) is even. It returns 0 for an empty sample. xs is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := stats.Sample{Xs: append([]float64(nil), xs...)}
	s.Sort()

	mid := len(s.Xs) / 2
	if len(s.Xs)%2 == 1 {
		return s.Xs[mid]
	}
	return (s.Xs[mid-1] + s.Xs[mid]) / 2
}

// Mean returns the arithmetic mean of xs, or 0 for an empty sample.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stats.Mean(xs)
}
