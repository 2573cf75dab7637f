package dataset

import (
	"context"
	"fmt"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/telemetry"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// postingColumns is the column order shared by Load and Insert.
const postingColumns = `posting_month, salary_median, job_count, merged_job_category, career_level,
	any_programming_required, residency_requirement, title_classification`

const postingColumnCount = 8

// postingValues lists a record's fields in postingColumns order.
func postingValues(r models.RawRecord) []interface{} {
	return []interface{}{
		r.PostingMonth.String(),
		r.SalaryMedian.String(),
		r.JobCount.String(),
		r.JobCategory.String(),
		r.CareerLevel.String(),
		r.ProgrammingRequired.String(),
		r.ResidencyRequirement.String(),
		r.TitleClassification.String(),
	}
}

func recordFromValues(vals [postingColumnCount]string) models.RawRecord {
	return models.RawRecord{
		PostingMonth:         models.Field(vals[0]),
		SalaryMedian:         models.Field(vals[1]),
		JobCount:             models.Field(vals[2]),
		JobCategory:          models.Field(vals[3]),
		CareerLevel:          models.Field(vals[4]),
		ProgrammingRequired:  models.Field(vals[5]),
		ResidencyRequirement: models.Field(vals[6]),
		TitleClassification:  models.Field(vals[7]),
	}
}

// ClickHouseSource reads raw posting rows from the job_postings table.
type ClickHouseSource struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func NewClickHouseSource(conn clickhouse.Conn, logger *zap.Logger) *ClickHouseSource {
	return &ClickHouseSource{
		conn:   conn,
		logger: logger,
	}
}

func (s *ClickHouseSource) Name() string {
	return "clickhouse:job_postings"
}

func (s *ClickHouseSource) Load(ctx context.Context) ([]models.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "ClickHouseSource.Load")
	defer span.End()

	rows, err := s.conn.Query(ctx, `SELECT `+postingColumns+` FROM job_postings ORDER BY loaded_at, id`)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to query job postings", zap.Error(err))
		return nil, errors.Unavailable("querying job postings", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var vals [postingColumnCount]string
		dest := make([]interface{}, len(vals))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			span.RecordError(err)
			return nil, errors.Internal("scanning job posting row", err)
		}
		records = append(records, recordFromValues(vals))
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, errors.Unavailable("iterating job posting rows", err)
	}

	span.SetAttributes(telemetry.Int("dataset.rows", len(records)))
	s.logger.Info("loaded job postings from clickhouse", zap.Int("rows", len(records)))
	return records, nil
}

// Insert appends raw rows to the job_postings table in one batch.
func (s *ClickHouseSource) Insert(ctx context.Context, records []models.RawRecord) error {
	ctx, span := tracer.Start(ctx, "ClickHouseSource.Insert")
	defer span.End()
	span.SetAttributes(telemetry.Int("dataset.rows", len(records)))

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO job_postings (id, `+postingColumns+`)`)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("prepare job postings batch: %w", err)
	}

	for _, r := range records {
		if err := batch.Append(append([]interface{}{uuid.New()}, postingValues(r)...)...); err != nil {
			span.RecordError(err)
			return fmt.Errorf("append job posting: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("insert job postings: %w", err)
	}

	s.logger.Info("inserted job postings", zap.Int("rows", len(records)))
	return nil
}
