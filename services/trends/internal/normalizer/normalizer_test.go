package normalizer

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

func TestNormalizeDropsUnparseableDates(t *testing.T) {
	raw := []models.RawRecord{
		{PostingMonth: "2023-01-01", SalaryMedian: "50000"},
		{PostingMonth: "not a date", SalaryMedian: "60000"},
		{PostingMonth: "", SalaryMedian: "70000"},
		{PostingMonth: "2023-02-01T00:00:00.000", SalaryMedian: "80000"},
		{PostingMonth: "2023-13-01"},
	}

	records := New(zaptest.NewLogger(t)).Normalize(raw)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	want := []time.Time{
		time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, r := range records {
		if !r.PostingMonth.Equal(want[i]) {
			t.Errorf("record %d PostingMonth = %v, want %v", i, r.PostingMonth, want[i])
		}
	}
}

func TestNormalizeCategoricals(t *testing.T) {
	raw := []models.RawRecord{{
		PostingMonth:         "2023-05-01",
		JobCategory:          "Technology, Data & Innovation",
		CareerLevel:          "",
		ResidencyRequirement: "null",
		TitleClassification:  "  Competitive-1  ",
	}}

	r := Normalize(raw)[0]
	if r.JobCategory != "Technology, Data & Innovation" {
		t.Errorf("JobCategory = %q", r.JobCategory)
	}
	if r.CareerLevel != models.NotAvailable {
		t.Errorf("CareerLevel = %q, want N/A", r.CareerLevel)
	}
	if r.ResidencyRequirement != models.NotAvailable {
		t.Errorf("ResidencyRequirement = %q, want N/A", r.ResidencyRequirement)
	}
	if r.TitleClassification != "Competitive-1" {
		t.Errorf("TitleClassification = %q", r.TitleClassification)
	}
}

func TestNormalizeProgrammingRequired(t *testing.T) {
	tests := []struct {
		in   models.Field
		want string
	}{
		{"true", "true"},
		{"True", "true"},
		{"1", "true"},
		{"yes", "true"},
		{"false", "false"},
		{"FALSE", "false"},
		{"0", "false"},
		{"no", "false"},
		{"", "false"},
		{"null", "false"},
		{"python", "true"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			r := Normalize([]models.RawRecord{{PostingMonth: "2024-03-01", ProgrammingRequired: tt.in}})[0]
			if r.ProgrammingRequired != tt.want {
				t.Errorf("ProgrammingRequired(%q) = %q, want %q", tt.in, r.ProgrammingRequired, tt.want)
			}
		})
	}
}

func TestNormalizeNumbers(t *testing.T) {
	tests := []struct {
		in      models.Field
		want    float64
		missing bool
	}{
		{in: "65000", want: 65000},
		{in: "65000.5", want: 65000.5},
		{in: "$65,000", want: 65000},
		{in: "", missing: true},
		{in: "n/a", missing: true},
		{in: "NaN", missing: true},
		{in: "Inf", missing: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			r := Normalize([]models.RawRecord{{PostingMonth: "2024-03-01", SalaryMedian: tt.in, JobCount: tt.in}})[0]
			if tt.missing {
				if r.HasSalary() {
					t.Errorf("salary %q should be missing, got %v", tt.in, r.Salary)
				}
				if !math.IsNaN(r.ReportedJobCount) {
					t.Errorf("job count %q should be NaN, got %v", tt.in, r.ReportedJobCount)
				}
				return
			}
			if r.Salary != tt.want {
				t.Errorf("Salary(%q) = %v, want %v", tt.in, r.Salary, tt.want)
			}
			if r.ReportedJobCount != tt.want {
				t.Errorf("ReportedJobCount(%q) = %v, want %v", tt.in, r.ReportedJobCount, tt.want)
			}
		})
	}
}

func TestNormalizeRecordIDsAreDeterministic(t *testing.T) {
	raw := []models.RawRecord{
		{PostingMonth: "2023-01-01", JobCategory: "A"},
		{PostingMonth: "2023-01-01", JobCategory: "A"},
	}

	first := Normalize(raw)
	second := Normalize(raw)
	if first[0].ID != second[0].ID {
		t.Error("record ID changed between runs")
	}
	if first[0].ID == first[1].ID {
		t.Error("identical rows at different positions share an ID")
	}
}

func TestNormalizeCustomLayout(t *testing.T) {
	n := New(nil, "01/2006")
	records := n.Normalize([]models.RawRecord{
		{PostingMonth: "07/2024"},
		{PostingMonth: "2024-08-01"},
		{PostingMonth: "2024-09-01T00:00:00.000"},
	})
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	want := []time.Month{time.July, time.August, time.September}
	for i, r := range records {
		if r.PostingMonth.Month() != want[i] {
			t.Errorf("records[%d] month = %v, want %v", i, r.PostingMonth.Month(), want[i])
		}
	}
}

func TestNormalizeKeepsCalendarDateOfOffsetTimestamps(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00+01:00", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"2023-03-01T00:00:00+02:00", time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"2023-05-31T23:30:00-05:00", time.Date(2023, time.May, 31, 0, 0, 0, 0, time.UTC)},
		{"2023-06-01T12:00:00Z", time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			records := Normalize([]models.RawRecord{{PostingMonth: models.Field(tt.in)}})
			if len(records) != 1 {
				t.Fatalf("got %d records, want 1", len(records))
			}
			if got := records[0].PostingMonth; !got.Equal(tt.want) {
				t.Errorf("PostingMonth = %v, want %v", got, tt.want)
			}
		})
	}
}
