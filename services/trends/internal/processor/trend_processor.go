package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/telemetry"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/aggregate"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/chart"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/config"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/dataset"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/messaging"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SummaryResponse struct {
	Year   int                          `json:"year"`
	Metric models.Metric                `json:"metric"`
	Points []models.MonthlySummaryPoint `json:"points"`
	Chart  chart.Spec                   `json:"chart"`
}

type TrendProcessor struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	dataset   *dataset.Dataset
	publisher messaging.Publisher
	mode      chart.Mode
	width     int
	height    int
	now       func() time.Time
}

// NewTrendProcessor serves summaries of ds. publisher may be nil, in which
// case summaries are not announced.
func NewTrendProcessor(logger *zap.Logger, ds *dataset.Dataset, publisher messaging.Publisher, cfg *config.Config) (*TrendProcessor, error) {
	mode, err := chart.ParseMode(cfg.ChartDomain)
	if err != nil {
		return nil, errors.InvalidInput("chart domain", err)
	}
	return &TrendProcessor{
		logger:    logger,
		tracer:    telemetry.GetTracer("jobs-nyc/trends/processor"),
		dataset:   ds,
		publisher: publisher,
		mode:      mode,
		width:     cfg.ChartWidth,
		height:    cfg.ChartHeight,
		now:       time.Now,
	}, nil
}

func (p *TrendProcessor) Summarize(ctx context.Context, req models.SummaryRequest) (*SummaryResponse, error) {
	ctx, span := p.tracer.Start(ctx, "Summarize")
	defer span.End()

	metric, err := validate(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	req.Metric = metric

	span.SetAttributes(
		telemetry.Int("selection.year", req.Selection.Year),
		telemetry.String("selection.metric", string(metric)),
		telemetry.Int("selection.constraints", len(req.Selection.Constraints())),
	)

	points := aggregate.Summarize(p.dataset.Records(), req.Selection)
	resp := &SummaryResponse{
		Year:   req.Selection.Year,
		Metric: metric,
		Points: points,
		Chart:  chart.Build(points, metric, req.Selection.Year, p.mode),
	}
	span.SetAttributes(telemetry.Int("summary.points", len(points)))

	p.logger.Debug("summarized postings",
		zap.Int("year", req.Selection.Year),
		zap.String("metric", string(metric)),
		zap.Int("points", len(points)))

	if p.publisher != nil {
		update := &models.SummaryUpdate{
			Request:     req,
			Points:      points,
			GeneratedAt: p.now().UTC(),
		}
		if err := p.publisher.PublishSummary(ctx, update); err != nil {
			p.logger.Warn("failed to publish summary update", zap.Error(err))
		}
	}

	return resp, nil
}

// Render writes the chart for req as SVG.
func (p *TrendProcessor) Render(ctx context.Context, req models.SummaryRequest, w io.Writer) error {
	resp, err := p.Summarize(ctx, req)
	if err != nil {
		return err
	}

	_, span := p.tracer.Start(ctx, "Render")
	defer span.End()

	if err := chart.WriteSVG(w, resp.Chart, p.width, p.height); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to render chart", zap.Error(err))
		return errors.Internal("rendering chart", err)
	}
	return nil
}

func (p *TrendProcessor) Options(ctx context.Context) dataset.Options {
	_, span := p.tracer.Start(ctx, "Options")
	defer span.End()
	return p.dataset.Options()
}

func validate(req models.SummaryRequest) (models.Metric, error) {
	if req.Selection.Year <= 0 {
		return "", errors.InvalidInput(fmt.Sprintf("invalid year %d", req.Selection.Year), nil)
	}
	metric, err := models.ParseMetric(string(req.Metric))
	if err != nil {
		return "", errors.InvalidInput("invalid metric", err)
	}
	return metric, nil
}
