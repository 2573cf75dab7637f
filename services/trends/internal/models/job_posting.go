package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// NotAvailable is substituted for missing categorical values. As a facet
// constraint it means the facet is not filtered.
const NotAvailable = "N/A"

// Field holds the textual form of a loosely typed source value. JSON
// strings, numbers and booleans all decode into it; null decodes to "".
type Field string

func (f *Field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Field(s)
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case bool:
		*f = Field(strconv.FormatBool(v))
	case float64:
		*f = Field(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		*f = Field(data)
	}
	return nil
}

func (f Field) String() string {
	return string(f)
}

// RawRecord is one row of the posting dataset as it was loaded.
type RawRecord struct {
	PostingMonth         Field `json:"Posting_Month"`
	SalaryMedian         Field `json:"salary_median"`
	JobCount             Field `json:"job_count"`
	JobCategory          Field `json:"merged_job_category"`
	CareerLevel          Field `json:"Career_Level"`
	ProgrammingRequired  Field `json:"any_programming_required"`
	ResidencyRequirement Field `json:"Residency_Requirement"`
	TitleClassification  Field `json:"Title_Classification"`
}

type NormalizedRecord struct {
	ID           string
	PostingMonth time.Time

	// Salary and ReportedJobCount are NaN when the source value was
	// missing or not numeric.
	Salary           float64
	ReportedJobCount float64

	JobCategory          string
	CareerLevel          string
	ProgrammingRequired  string
	ResidencyRequirement string
	TitleClassification  string
}

func (r NormalizedRecord) HasSalary() bool {
	return !math.IsNaN(r.Salary) && !math.IsInf(r.Salary, 0)
}
