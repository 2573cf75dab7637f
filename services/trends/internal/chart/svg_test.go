package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
)

func TestWriteSVG(t *testing.T) {
	spec := Build(samplePoints(), models.MetricJobCount, 2023, DomainYear)

	var buf bytes.Buffer
	if err := WriteSVG(&buf, spec, 640, 400); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("output is not an SVG document: %.80q", out)
	}
	if !strings.Contains(out, "Posting Month") {
		t.Error("x axis label missing")
	}
}

func TestWriteSVGEmpty(t *testing.T) {
	spec := Build(nil, models.MetricJobCount, 2023, DomainYear)

	var buf bytes.Buffer
	if err := WriteSVG(&buf, spec, 640, 400); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatalf("blank frame is not a complete SVG document: %q", out)
	}
	if !strings.Contains(out, "No postings match the selection") {
		t.Error("blank frame message missing")
	}
}

func TestWriteSVGInvalidSize(t *testing.T) {
	if err := WriteSVG(&bytes.Buffer{}, Spec{}, 0, 400); err == nil {
		t.Error("expected error for zero width")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSVGEmptyReportsWriteError(t *testing.T) {
	if err := WriteSVG(failingWriter{}, Spec{}, 640, 400); err == nil {
		t.Error("expected write error")
	}
}

func TestMonthOffset(t *testing.T) {
	origin := month(2023, time.January)
	tests := []struct {
		t    time.Time
		want float64
	}{
		{month(2023, time.January), 0},
		{month(2023, time.December), 11},
		{time.Date(2023, time.February, 15, 0, 0, 0, 0, time.UTC), 1.5},
		{month(2024, time.March), 14},
	}
	for _, tt := range tests {
		if got := monthOffset(origin, tt.t); got != tt.want {
			t.Errorf("monthOffset(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}

	format := monthTickFormatter(origin)
	for x, want := range map[float64]string{0: "2023", 2: "Mar", 12: "2024", 2.5: ""} {
		if got := format(x); got != want {
			t.Errorf("format(%v) = %q, want %q", x, got, want)
		}
	}
}
