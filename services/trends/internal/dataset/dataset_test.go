package dataset

import (
	"reflect"
	"testing"
	"time"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

func record(month string, category, career string) models.NormalizedRecord {
	t, err := time.Parse("2006-01-02", month)
	if err != nil {
		panic(err)
	}
	return models.NormalizedRecord{
		PostingMonth:         t,
		JobCategory:          category,
		CareerLevel:          career,
		ProgrammingRequired:  "false",
		ResidencyRequirement: models.NotAvailable,
		TitleClassification:  models.NotAvailable,
	}
}

func TestDatasetYears(t *testing.T) {
	d := New([]models.NormalizedRecord{
		record("2023-03-01", "Technology", "Manager"),
		record("2021-01-01", "Legal", "Entry-Level"),
		record("2023-01-01", "Technology", "Manager"),
	})

	if got, want := d.Years(), []int{2021, 2023}; !reflect.DeepEqual(got, want) {
		t.Errorf("Years() = %v, want %v", got, want)
	}
	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
}

func TestDatasetCopiesRecords(t *testing.T) {
	in := []models.NormalizedRecord{record("2023-01-01", "Technology", "Manager")}
	d := New(in)
	in[0].JobCategory = "Changed"

	if got := d.Records()[0].JobCategory; got != "Technology" {
		t.Errorf("dataset shares caller slice: JobCategory = %q", got)
	}
}

func TestDatasetFacetValues(t *testing.T) {
	d := New([]models.NormalizedRecord{
		record("2023-01-01", "Technology", "Manager"),
		record("2023-02-01", "Legal", models.NotAvailable),
		record("2023-03-01", "Technology", "Entry-Level"),
	})

	tests := []struct {
		facet models.Facet
		want  []string
	}{
		{models.FacetJobCategory, []string{"Legal", "Technology"}},
		{models.FacetCareerLevel, []string{"Entry-Level", "Manager"}},
		{models.FacetProgrammingRequired, []string{"false"}},
		{models.FacetTitleClassification, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.facet.Key(), func(t *testing.T) {
			if got := d.FacetValues(tt.facet); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FacetValues(%s) = %v, want %v", tt.facet, got, tt.want)
			}
		})
	}
}

func TestDatasetOptions(t *testing.T) {
	d := New([]models.NormalizedRecord{record("2022-06-01", "Technology", "Manager")})

	opts := d.Options()
	if !reflect.DeepEqual(opts.Years, []int{2022}) {
		t.Errorf("Years = %v", opts.Years)
	}
	if len(opts.Facets) != len(models.Facets) {
		t.Errorf("got %d facets, want %d", len(opts.Facets), len(models.Facets))
	}

	empty := New(nil).Options()
	if len(empty.Years) != 0 {
		t.Errorf("empty dataset years = %v", empty.Years)
	}
}
