package events

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/telemetry"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/config"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/dataset"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/processor"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap/zaptest"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		want    models.SummaryRequest
	}{
		{
			name:    "valid",
			payload: `{"selection":{"year":2023,"facets":{"Career_Level":"Manager"}},"metric":"median_salary"}`,
			want: models.SummaryRequest{
				Selection: models.FilterSelection{
					Year:   2023,
					Facets: map[models.Facet]string{models.FacetCareerLevel: "Manager"},
				},
				Metric: models.MetricMedianSalary,
			},
		},
		{name: "malformed", payload: `{"selection":`, wantErr: true},
		{name: "unknown facet", payload: `{"selection":{"year":2023,"facets":{"Agency":"DOT"}}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRequest([]byte(tt.payload))
			if tt.wantErr {
				if !errors.Is(err, errors.ErrTypeInvalidInput) {
					t.Fatalf("decodeRequest() error = %v, want invalid input", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeRequest(): %v", err)
			}
			if got.Selection.Year != tt.want.Selection.Year || got.Metric != tt.want.Metric {
				t.Errorf("decodeRequest() = %+v, want %+v", got, tt.want)
			}
			if fmt.Sprint(got.Selection.Facets) != fmt.Sprint(tt.want.Selection.Facets) {
				t.Errorf("facets = %v, want %v", got.Selection.Facets, tt.want.Selection.Facets)
			}
		})
	}
}

func TestErrorReplyJSON(t *testing.T) {
	err := errors.InvalidInput("invalid year 0", nil)
	data, merr := json.Marshal(ErrorReply{Error: err.Error(), Type: errors.TypeOf(err)})
	if merr != nil {
		t.Fatalf("marshal: %v", merr)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "INVALID_INPUT" || decoded["error"] == "" {
		t.Errorf("reply = %s", data)
	}
}

func TestHandlersWithoutReplySubject(t *testing.T) {
	logger := zaptest.NewLogger(t)
	p, err := processor.NewTrendProcessor(logger, dataset.New(nil), nil, &config.Config{
		ChartDomain: config.DomainYear,
		ChartWidth:  320,
		ChartHeight: 200,
	})
	if err != nil {
		t.Fatalf("NewTrendProcessor: %v", err)
	}
	h := NewHandler(logger, nil, telemetry.GetTracer("test"), p)

	// Fire-and-forget requests are processed and their replies dropped.
	h.handleSummarize(&nats.Msg{Subject: SummarizeSubject, Data: []byte(`{"selection":{"year":2023}}`)})
	h.handleRender(&nats.Msg{Subject: RenderSubject, Data: []byte(`{"selection":{"year":0}}`)})
	h.handleOptions(&nats.Msg{Subject: OptionsSubject})
}

func TestSubscriptionsOrder(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t), nil, telemetry.GetTracer("test"), nil)

	want := []string{SummarizeSubject, RenderSubject, OptionsSubject}
	for run := 0; run < 5; run++ {
		subs := h.subscriptions()
		if len(subs) != len(want) {
			t.Fatalf("got %d subscriptions, want %d", len(subs), len(want))
		}
		for i, s := range subs {
			if s.subject != want[i] {
				t.Errorf("run %d: subscriptions()[%d] = %q, want %q", run, i, s.subject, want[i])
			}
			if s.handler == nil {
				t.Errorf("subscription %q has no handler", s.subject)
			}
		}
	}
}
