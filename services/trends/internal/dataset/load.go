package dataset

import (
	"context"
	"fmt"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/telemetry"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/errors"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/models"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/normalizer"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoadAll fetches every source concurrently, normalizes the rows in source
// order and returns the resulting dataset. Any source failure fails the
// whole load.
func LoadAll(ctx context.Context, logger *zap.Logger, n *normalizer.Normalizer, sources ...Source) (*Dataset, error) {
	ctx, span := tracer.Start(ctx, "LoadAll")
	defer span.End()

	if len(sources) == 0 {
		return nil, errors.InvalidInput("no dataset sources configured", nil)
	}
	if n == nil {
		n = normalizer.New(logger)
	}

	results := make([][]models.RawRecord, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			raw, err := src.Load(gctx)
			if err != nil {
				logger.Error("failed to load dataset source",
					zap.String("source", src.Name()),
					zap.Error(err))
				return fmt.Errorf("load %s: %w", src.Name(), err)
			}
			results[i] = raw
			logger.Debug("loaded dataset source",
				zap.String("source", src.Name()),
				zap.Int("rows", len(raw)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	var raw []models.RawRecord
	for _, r := range results {
		raw = append(raw, r...)
	}

	records := n.Normalize(raw)
	span.SetAttributes(
		telemetry.Int("dataset.raw_rows", len(raw)),
		telemetry.Int("dataset.records", len(records)),
	)
	logger.Info("dataset ready",
		zap.Int("sources", len(sources)),
		zap.Int("raw_rows", len(raw)),
		zap.Int("records", len(records)),
		zap.Int("dropped", len(raw)-len(records)))

	return New(records), nil
}

// FileSources returns a FileSource per path.
func FileSources(paths ...string) []Source {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, FileSource{Path: p})
	}
	return sources
}
