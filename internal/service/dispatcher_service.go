package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"artemius/internal/metrics"
	"artemius/internal/model"
)

// Generator produces the output of one feature.
type Generator interface {
	Generate(ctx context.Context, userID model.UserID, payload model.Payload) (*model.GenerationResult, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, userID model.UserID, payload model.Payload) (*model.GenerationResult, error)

func (f GeneratorFunc) Generate(ctx context.Context, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	return f(ctx, userID, payload)
}

// FeatureDispatcher routes a permitted request to the generator of its
// feature. It performs no entitlement checks.
type FeatureDispatcher interface {
	Invoke(ctx context.Context, f model.Feature, userID model.UserID, payload model.Payload) (*model.GenerationResult, error)
}

type dispatcherService struct {
	generators map[model.Feature]Generator
	timeout    time.Duration
	metrics    *metrics.EntitlementMetrics
	logger     zerolog.Logger
}

// NewDispatcherService bounds every generation by timeout. Zero disables
// the bound.
func NewDispatcherService(generators map[model.Feature]Generator, timeout time.Duration, logger zerolog.Logger) FeatureDispatcher {
	return &dispatcherService{
		generators: generators,
		timeout:    timeout,
		metrics:    metrics.Get(),
		logger:     logger.With().Str("service", "DispatcherService").Logger(),
	}
}

func (d *dispatcherService) Invoke(ctx context.Context, f model.Feature, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	gen, ok := d.generators[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, f)
	}

	jobID := uuid.NewString()
	log := d.logger.With().Str("job_id", jobID).Int64("user_id", int64(userID)).Str("feature", string(f)).Logger()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := gen.Generate(ctx, userID, payload)
	d.metrics.RecordInvocation(string(f), err, time.Since(start).Seconds())
	if err != nil {
		log.Error().Err(err).Msg("Generator failed")
		return nil, fmt.Errorf("generate %s: %w", f, err)
	}
	if res == nil {
		log.Error().Msg("Generator returned no result")
		return nil, fmt.Errorf("generate %s: %w", f, ErrGeneratorUnavailable)
	}

	res.JobID = jobID
	res.Feature = f
	log.Info().Dur("took", time.Since(start)).Msg("Generator finished")
	return res, nil
}
