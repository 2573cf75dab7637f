package messaging

import (
	"context"
	"encoding/json"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/telemetry"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobs-nyc/trends/messaging")

const (
	SummaryUpdatedSubject = "trends.summary.updated"
)

type Publisher interface {
	PublishSummary(ctx context.Context, update *models.SummaryUpdate) error
	Close()
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Flush() error
}

var _ conn = (*nats.Conn)(nil)

type natsPublisher struct {
	conn   conn
	logger *zap.Logger
}

// NewPublisher publishes on an existing connection. Close does not close
// the connection; its owner does.
func NewPublisher(logger *zap.Logger, nc *nats.Conn) Publisher {
	if nc == nil {
		return newPublisher(logger, nil)
	}
	return newPublisher(logger, nc)
}

func newPublisher(logger *zap.Logger, c conn) *natsPublisher {
	return &natsPublisher{
		conn:   c,
		logger: logger,
	}
}

func (p *natsPublisher) PublishSummary(ctx context.Context, update *models.SummaryUpdate) error {
	_, span := tracer.Start(ctx, "PublishSummary")
	defer span.End()

	data, err := EncodeSummary(update)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling summary update", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", SummaryUpdatedSubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(SummaryUpdatedSubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish summary",
			zap.Int("year", update.Request.Selection.Year),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published summary",
		zap.Int("year", update.Request.Selection.Year),
		zap.String("metric", string(update.Request.Metric)),
		zap.Int("points", len(update.Points)),
		zap.String("subject", SummaryUpdatedSubject))
	return nil
}

// EncodeSummary is the wire form of a summary update.
func EncodeSummary(update *models.SummaryUpdate) ([]byte, error) {
	return json.Marshal(update)
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Flush(); err != nil {
			p.logger.Warn("failed to flush NATS connection", zap.Error(err))
		}
	}
}
