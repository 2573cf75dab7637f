// Package dataset owns the normalized posting records the trend charts are
// computed from, and the sources they are loaded from.
package dataset

import (
	"sort"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

// Dataset is an immutable set of normalized records. It is safe for
// concurrent use.
type Dataset struct {
	records []models.NormalizedRecord
}

// Options lists the selector values a client can offer for a dataset.
type Options struct {
	Years  []int                     `json:"years"`
	Facets map[models.Facet][]string `json:"facets"`
}

func New(records []models.NormalizedRecord) *Dataset {
	owned := make([]models.NormalizedRecord, len(records))
	copy(owned, records)
	return &Dataset{records: owned}
}

// Records returns the dataset's records. Callers must not modify the
// returned slice.
func (d *Dataset) Records() []models.NormalizedRecord {
	return d.records
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Years returns the distinct posting years in ascending order.
func (d *Dataset) Years() []int {
	seen := make(map[int]struct{})
	years := []int{}
	for _, r := range d.records {
		y := r.PostingMonth.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// FacetValues returns the distinct values of f in sorted order, excluding
// the N/A sentinel.
func (d *Dataset) FacetValues(f models.Facet) []string {
	seen := make(map[string]struct{})
	values := []string{}
	for _, r := range d.records {
		v := f.Value(r)
		if v == "" || v == models.NotAvailable {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func (d *Dataset) Options() Options {
	opts := Options{
		Years:  d.Years(),
		Facets: make(map[models.Facet][]string, len(models.Facets)),
	}
	for _, f := range models.Facets {
		opts.Facets[f] = d.FacetValues(f)
	}
	return opts
}
