package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

// Source loads the raw posting rows of a dataset.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]models.RawRecord, error)
}

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatFromPath picks the decoder for a file name or URL path. Anything
// that is not .csv is treated as a JSON document.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

func Decode(r io.Reader, format Format) ([]models.RawRecord, error) {
	switch format {
	case FormatCSV:
		return decodeCSV(r)
	case FormatJSON:
		return decodeJSON(r)
	}
	return nil, fmt.Errorf("unsupported dataset format %q", format)
}

func decodeJSON(r io.Reader) ([]models.RawRecord, error) {
	var records []models.RawRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json dataset: %w", err)
	}
	return records, nil
}

var csvColumns = map[string]func(*models.RawRecord) *models.Field{
	"posting_month":            func(r *models.RawRecord) *models.Field { return &r.PostingMonth },
	"salary_median":            func(r *models.RawRecord) *models.Field { return &r.SalaryMedian },
	"median_salary":            func(r *models.RawRecord) *models.Field { return &r.SalaryMedian },
	"job_count":                func(r *models.RawRecord) *models.Field { return &r.JobCount },
	"merged_job_category":      func(r *models.RawRecord) *models.Field { return &r.JobCategory },
	"career_level":             func(r *models.RawRecord) *models.Field { return &r.CareerLevel },
	"any_programming_required": func(r *models.RawRecord) *models.Field { return &r.ProgrammingRequired },
	"residency_requirement":    func(r *models.RawRecord) *models.Field { return &r.ResidencyRequirement },
	"title_classification":     func(r *models.RawRecord) *models.Field { return &r.TitleClassification },
}

// decodeCSV maps columns by header name, case-insensitively. Unknown
// columns are ignored.
func decodeCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	fields := make([]func(*models.RawRecord) *models.Field, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		fields[i] = csvColumns[name]
	}

	records := []models.RawRecord{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(records)+2, err)
		}

		var rec models.RawRecord
		for i, cell := range row {
			if i < len(fields) && fields[i] != nil {
				*fields[i](&rec) = models.Field(cell)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// FileSource reads a JSON or CSV dataset from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return "file:" + s.Path
}

func (s FileSource) Load(ctx context.Context) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("dataset file %s", s.Path), err)
		}
		return nil, errors.Unavailable(fmt.Sprintf("opening dataset file %s", s.Path), err)
	}
	defer f.Close()

	records, err := Decode(f, FormatFromPath(s.Path))
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("decoding dataset file %s", s.Path), err)
	}
	return records, nil
}
