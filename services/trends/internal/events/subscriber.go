package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/processor"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	SummarizeSubject = "trends.summarize"
	RenderSubject    = "trends.render"
	OptionsSubject   = "trends.options"

	queueGroup = "trends-service"
)

// ErrorReply is sent in place of a result when a request fails.
type ErrorReply struct {
	Error string           `json:"error"`
	Type  errors.ErrorType `json:"type"`
}

type Handler struct {
	logger    *zap.Logger
	nc        *nats.Conn
	tracer    trace.Tracer
	processor *processor.TrendProcessor
	subs      []*nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, trendProcessor *processor.TrendProcessor) *Handler {
	return &Handler{
		logger:    logger,
		nc:        nc,
		tracer:    tracer,
		processor: trendProcessor,
	}
}

type subscription struct {
	subject string
	handler nats.MsgHandler
}

// subscriptions lists the handled subjects in registration order.
func (h *Handler) subscriptions() []subscription {
	return []subscription{
		{SummarizeSubject, h.handleSummarize},
		{RenderSubject, h.handleRender},
		{OptionsSubject, h.handleOptions},
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	for _, s := range h.subscriptions() {
		sub, err := h.nc.QueueSubscribe(s.subject, queueGroup, s.handler)
		if err != nil {
			_ = h.unsubscribe()
			return fmt.Errorf("subscribe to %s: %w", s.subject, err)
		}
		h.subs = append(h.subs, sub)
	}

	h.logger.Info("Registered NATS subscriptions", zap.Int("count", len(h.subs)))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.unsubscribe()
		},
	})

	return nil
}

func (h *Handler) unsubscribe() error {
	var firstErr error
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.subs = nil
	return firstErr
}

func (h *Handler) handleSummarize(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleSummarize")
	defer span.End()

	req, err := decodeRequest(msg.Data)
	if err != nil {
		h.replyError(msg, err)
		return
	}

	resp, err := h.processor.Summarize(ctx, req)
	if err != nil {
		h.replyError(msg, err)
		return
	}
	h.replyJSON(msg, resp)
}

func (h *Handler) handleRender(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleRender")
	defer span.End()

	req, err := decodeRequest(msg.Data)
	if err != nil {
		h.replyError(msg, err)
		return
	}

	var buf bytes.Buffer
	if err := h.processor.Render(ctx, req, &buf); err != nil {
		h.replyError(msg, err)
		return
	}
	h.reply(msg, buf.Bytes())
}

func (h *Handler) handleOptions(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleOptions")
	defer span.End()

	h.replyJSON(msg, h.processor.Options(ctx))
}

func decodeRequest(data []byte) (models.SummaryRequest, error) {
	var req models.SummaryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, errors.InvalidInput("decoding summary request", err)
	}
	return req, nil
}

func (h *Handler) replyJSON(msg *nats.Msg, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.replyError(msg, errors.Internal("encoding reply", err))
		return
	}
	h.reply(msg, data)
}

func (h *Handler) replyError(msg *nats.Msg, err error) {
	h.logger.Error("Failed to handle request",
		zap.Error(err),
		zap.String("subject", msg.Subject),
	)
	data, merr := json.Marshal(ErrorReply{Error: err.Error(), Type: errors.TypeOf(err)})
	if merr != nil {
		h.logger.Error("Failed to encode error reply", zap.Error(merr))
		return
	}
	h.reply(msg, data)
}

func (h *Handler) reply(msg *nats.Msg, data []byte) {
	if msg.Reply == "" {
		h.logger.Debug("Dropping reply to request without reply subject",
			zap.String("subject", msg.Subject),
		)
		return
	}
	if err := msg.Respond(data); err != nil {
		h.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.String("subject", msg.Subject),
		)
		return
	}
	h.logger.Debug("Replied to request",
		zap.String("subject", msg.Subject),
		zap.Int("bytes", len(data)),
	)
}
