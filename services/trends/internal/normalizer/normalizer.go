package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

// PostingMonthLayout is the layout of the posting month column.
const PostingMonthLayout = "2006-01-02"

// DefaultLayouts are tried in order when parsing a posting month. The
// timestamp forms are what JSON exports of the dataset emit.
var DefaultLayouts = []string{
	PostingMonthLayout,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

var (
	recordNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	numericNoise = regexp.MustCompile(`[\s$,]`)
)

type Normalizer struct {
	layouts []string
	logger  *zap.Logger
}

// New returns a Normalizer that tries DefaultLayouts and then any extra
// layouts, in order.
func New(logger *zap.Logger, extra ...string) *Normalizer {
	layouts := make([]string, 0, len(DefaultLayouts)+len(extra))
	layouts = append(layouts, DefaultLayouts...)
	layouts = append(layouts, extra...)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		layouts: layouts,
		logger:  logger,
	}
}

// Normalize coerces raw records into their canonical shape using the
// default layouts. Records whose posting month does not parse are dropped.
func Normalize(raw []models.RawRecord) []models.NormalizedRecord {
	return New(nil).Normalize(raw)
}

func (n *Normalizer) Normalize(raw []models.RawRecord) []models.NormalizedRecord {
	records := make([]models.NormalizedRecord, 0, len(raw))
	dropped := 0

	for i, r := range raw {
		postingMonth, ok := n.parseDate(r.PostingMonth.String())
		if !ok {
			dropped++
			continue
		}

		records = append(records, models.NormalizedRecord{
			ID:                   recordID(i, r),
			PostingMonth:         postingMonth,
			Salary:               parseNumber(r.SalaryMedian.String()),
			ReportedJobCount:     parseNumber(r.JobCount.String()),
			JobCategory:          orNotAvailable(r.JobCategory.String()),
			CareerLevel:          orNotAvailable(r.CareerLevel.String()),
			ProgrammingRequired:  boolString(r.ProgrammingRequired.String()),
			ResidencyRequirement: orNotAvailable(r.ResidencyRequirement.String()),
			TitleClassification:  orNotAvailable(r.TitleClassification.String()),
		})
	}

	if dropped > 0 {
		n.logger.Debug("dropped records with unparseable posting month",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(records)))
	}

	return records
}

func (n *Normalizer) parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range n.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			// The posting's own calendar date, whatever offset it was written with.
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func recordID(index int, r models.RawRecord) string {
	key := strings.Join([]string{
		strconv.Itoa(index),
		r.PostingMonth.String(),
		r.JobCategory.String(),
		r.CareerLevel.String(),
		r.TitleClassification.String(),
	}, "|")
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}

func orNotAvailable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return models.NotAvailable
	}
	return s
}

func boolString(s string) string {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return strconv.FormatBool(b)
	}

	switch strings.ToLower(s) {
	case "yes", "y":
		return "true"
	case "", "no", "n", "null", "nan":
		return "false"
	}
	return "true"
}

func parseNumber(s string) float64 {
	s = numericNoise.ReplaceAllString(s, "")
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}
