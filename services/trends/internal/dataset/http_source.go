package dataset

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/cache"
	"github.com/Falling-dow/Jobs-NYC-Postings/common/telemetry"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobs-nyc/trends/dataset")

const maxPayloadBytes = 256 << 20

// HTTPSource fetches a published dataset. The response body is cached so
// restarts within the TTL do not refetch it.
type HTTPSource struct {
	url    string
	client *http.Client
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewHTTPSource(rawURL string, client *http.Client, c cache.Cache, ttl time.Duration, logger *zap.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{
		url:    rawURL,
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

func (s *HTTPSource) cacheKey() string {
	return "trends:dataset:" + s.url
}

type cachedPayload struct {
	format Format
	body   []byte
}

func (p *cachedPayload) MarshalBinary() ([]byte, error) {
	return append([]byte(string(p.format)+"\n"), p.body...), nil
}

func (p *cachedPayload) UnmarshalBinary(data []byte) error {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return fmt.Errorf("cached dataset payload has no format header")
	}
	p.format = Format(data[:i])
	p.body = append([]byte(nil), data[i+1:]...)
	return nil
}

func (s *HTTPSource) Load(ctx context.Context) ([]models.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "HTTPSource.Load")
	defer span.End()
	span.SetAttributes(telemetry.String("http.url", s.url))

	var payload cachedPayload
	err := s.cache.Get(ctx, s.cacheKey(), &payload)
	if err == nil {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		s.logger.Debug("cache hit for dataset", zap.String("url", s.url))
		return s.decode(payload)
	} else if !stderrors.Is(err, cache.ErrNotFound) {
		span.SetAttributes(telemetry.String("cache.result", "error"))
		span.RecordError(err)
		s.logger.Warn("cache error for dataset", zap.String("url", s.url), zap.Error(err))
	} else {
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	}

	s.logger.Debug("cache miss, fetching dataset", zap.String("url", s.url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		span.RecordError(err)
		return nil, errors.InvalidInput("creating dataset request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to execute dataset request", zap.String("url", s.url), zap.Error(err))
		return nil, errors.Unavailable("executing dataset request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(
		telemetry.Int("http.status_code", resp.StatusCode),
		telemetry.String("http.method", http.MethodGet),
	)

	if resp.StatusCode == http.StatusNotFound {
		s.logger.Warn("dataset not found", zap.String("url", s.url))
		return nil, errors.NotFound("dataset not found", nil)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("unexpected status code", zap.String("url", s.url), zap.Int("status_code", resp.StatusCode))
		return nil, errors.Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		span.RecordError(err)
		return nil, errors.Unavailable("reading dataset response", err)
	}

	payload = cachedPayload{format: s.formatOf(resp), body: body}
	records, err := s.decode(payload)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(telemetry.Int("dataset.rows", len(records)))
	s.logger.Info("fetched dataset",
		zap.String("url", s.url),
		zap.Int("bytes", len(body)),
		zap.Int("rows", len(records)))

	if err := s.cache.Set(ctx, s.cacheKey(), &payload, s.ttl); err != nil {
		s.logger.Warn("failed to cache dataset", zap.String("url", s.url), zap.Error(err))
	}

	return records, nil
}

func (s *HTTPSource) decode(p cachedPayload) ([]models.RawRecord, error) {
	records, err := Decode(bytes.NewReader(p.body), p.format)
	if err != nil {
		s.logger.Error("failed to decode dataset", zap.String("url", s.url), zap.Error(err))
		return nil, errors.InvalidInput("decoding dataset response", err)
	}
	return records, nil
}

func (s *HTTPSource) formatOf(resp *http.Response) Format {
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		switch mediaType {
		case "text/csv", "application/csv":
			return FormatCSV
		case "application/json":
			return FormatJSON
		}
	}
	if u, err := url.Parse(s.url); err == nil {
		return FormatFromPath(u.Path)
	}
	return FormatJSON
}
