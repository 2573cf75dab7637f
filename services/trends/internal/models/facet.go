package models

import (
	"fmt"
)

// Facet is a categorical field of NormalizedRecord usable as an equality
// filter.
type Facet int

const (
	FacetJobCategory Facet = iota
	FacetCareerLevel
	FacetProgrammingRequired
	FacetResidencyRequirement
	FacetTitleClassification
)

// Facets lists every supported facet in selector order.
var Facets = []Facet{
	FacetJobCategory,
	FacetCareerLevel,
	FacetProgrammingRequired,
	FacetResidencyRequirement,
	FacetTitleClassification,
}

var facetKeys = map[Facet]string{
	FacetJobCategory:          "merged_job_category",
	FacetCareerLevel:          "Career_Level",
	FacetProgrammingRequired:  "any_programming_required",
	FacetResidencyRequirement: "Residency_Requirement",
	FacetTitleClassification:  "Title_Classification",
}

var facetAccessors = map[Facet]func(NormalizedRecord) string{
	FacetJobCategory:          func(r NormalizedRecord) string { return r.JobCategory },
	FacetCareerLevel:          func(r NormalizedRecord) string { return r.CareerLevel },
	FacetProgrammingRequired:  func(r NormalizedRecord) string { return r.ProgrammingRequired },
	FacetResidencyRequirement: func(r NormalizedRecord) string { return r.ResidencyRequirement },
	FacetTitleClassification:  func(r NormalizedRecord) string { return r.TitleClassification },
}

// Key returns the dataset column name of the facet.
func (f Facet) Key() string {
	if key, ok := facetKeys[f]; ok {
		return key
	}
	return fmt.Sprintf("Facet(%d)", int(f))
}

func (f Facet) String() string {
	return f.Key()
}

// Value returns the facet's value on r.
func (f Facet) Value(r NormalizedRecord) string {
	if get, ok := facetAccessors[f]; ok {
		return get(r)
	}
	return NotAvailable
}

func ParseFacet(key string) (Facet, error) {
	for _, f := range Facets {
		if facetKeys[f] == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown facet %q", key)
}

func (f Facet) MarshalText() ([]byte, error) {
	if _, ok := facetKeys[f]; !ok {
		return nil, fmt.Errorf("unknown facet %d", int(f))
	}
	return []byte(f.Key()), nil
}

func (f *Facet) UnmarshalText(text []byte) error {
	parsed, err := ParseFacet(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
