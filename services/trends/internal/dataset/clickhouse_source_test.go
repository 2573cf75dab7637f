package dataset

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

// fakeConn keeps inserted rows in memory and serves them back to Query.
type fakeConn struct {
	driver.Conn
	rows     [][postingColumnCount]string
	queryErr error
	queries  []string
}

func (c *fakeConn) Query(_ context.Context, query string, _ ...any) (driver.Rows, error) {
	c.queries = append(c.queries, query)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return &fakeRows{rows: c.rows, pos: -1}, nil
}

func (c *fakeConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.queries = append(c.queries, query)
	return &fakeBatch{conn: c}, nil
}

type fakeRows struct {
	driver.Rows
	rows [][postingColumnCount]string
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) != postingColumnCount {
		return stderrors.New("column count mismatch")
	}
	for i, d := range dest {
		*(d.(*string)) = r.rows[r.pos][i]
	}
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }

type fakeBatch struct {
	driver.Batch
	conn    *fakeConn
	pending [][postingColumnCount]string
}

func (b *fakeBatch) Append(v ...any) error {
	if len(v) != postingColumnCount+1 {
		return stderrors.New("column count mismatch")
	}
	if _, ok := v[0].(uuid.UUID); !ok {
		return stderrors.New("id is not a uuid")
	}
	var row [postingColumnCount]string
	for i, val := range v[1:] {
		row[i] = val.(string)
	}
	b.pending = append(b.pending, row)
	return nil
}

func (b *fakeBatch) Send() error {
	b.conn.rows = append(b.conn.rows, b.pending...)
	return nil
}

func TestPostingColumnsMatchValues(t *testing.T) {
	cols := strings.Split(postingColumns, ",")
	if len(cols) != postingColumnCount {
		t.Fatalf("postingColumns has %d columns, want %d", len(cols), postingColumnCount)
	}
	if n := len(postingValues(models.RawRecord{})); n != postingColumnCount {
		t.Errorf("postingValues returned %d values, want %d", n, postingColumnCount)
	}
}

func TestClickHouseSourceInsertThenLoad(t *testing.T) {
	conn := &fakeConn{}
	src := NewClickHouseSource(conn, zaptest.NewLogger(t))

	in := []models.RawRecord{
		{
			PostingMonth:         "2023-01-01",
			SalaryMedian:         "85000",
			JobCount:             "3",
			JobCategory:          "Engineering, Architecture, & Planning",
			CareerLevel:          "Experienced (non-manager)",
			ProgrammingRequired:  "true",
			ResidencyRequirement: "false",
			TitleClassification:  "Competitive-1",
		},
		{
			PostingMonth: "2023-02-01T00:00:00.000",
			SalaryMedian: "72000.5",
			JobCount:     "1",
			JobCategory:  "Health",
			CareerLevel:  "Entry-Level",
		},
	}

	if err := src.Insert(context.Background(), in); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	out, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}

	if len(conn.queries) != 2 {
		t.Fatalf("ran %d statements, want 2", len(conn.queries))
	}
	if !strings.HasPrefix(conn.queries[0], "INSERT INTO job_postings (id, ") {
		t.Errorf("insert statement = %q", conn.queries[0])
	}
	if !strings.Contains(conn.queries[1], "FROM job_postings") {
		t.Errorf("select statement = %q", conn.queries[1])
	}
}

func TestClickHouseSourceLoadUnavailable(t *testing.T) {
	src := NewClickHouseSource(&fakeConn{queryErr: stderrors.New("connection refused")}, zaptest.NewLogger(t))

	_, err := src.Load(context.Background())
	if !errors.Is(err, errors.ErrTypeUnavailable) {
		t.Fatalf("Load() error = %v, want unavailable", err)
	}
}
