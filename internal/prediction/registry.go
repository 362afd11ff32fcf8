package prediction

import (
	"context"
	"sync"
	"time"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/observability"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/retry"
)

// Registry lazily loads and memoizes regression models for the lifetime
// of the process. The first caller of an accessor triggers the artifact
// fetch; every later caller reuses the cached instance. A failed load is
// not cached, so the next request gets a fresh attempt. There is no
// invalidation path: picking up a retrained model means restarting.
type Registry struct {
	store         providers.ArtifactProvider
	fetchAttempts int

	mu     sync.Mutex
	models map[string]Regressor
}

// NewRegistry creates a model registry backed by the given artifact store
func NewRegistry(store providers.ArtifactProvider, fetchAttempts int) *Registry {
	if fetchAttempts < 1 {
		fetchAttempts = 1
	}
	return &Registry{
		store:         store,
		fetchAttempts: fetchAttempts,
		models:        make(map[string]Regressor),
	}
}

// PriceModel returns the price multiplier model, loading it on first use
func (r *Registry) PriceModel(ctx context.Context) (Regressor, error) {
	return r.model(ctx, providers.ArtifactPricingModel)
}

// TimelineModel returns the turnaround-time model, loading it on first use
func (r *Registry) TimelineModel(ctx context.Context) (Regressor, error) {
	return r.model(ctx, providers.ArtifactTimelineModel)
}

// model returns the cached regressor for name, fetching and decoding the
// artifact under the lock so concurrent first callers perform at most
// one load. The loaded model is immutable and read without further
// locking by Predict callers.
func (r *Registry) model(ctx context.Context, name string) (Regressor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if model, ok := r.models[name]; ok {
		return model, nil
	}

	logger := observability.LoggerFromContext(ctx)

	var data []byte
	cfg := retry.Bounded(r.fetchAttempts)
	cfg.OnRetry = func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().
			Str("artifact", name).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Err(err).
			Msg("model artifact fetch failed, retrying")
	}
	err := retry.Do(ctx, cfg, func() error {
		var fetchErr error
		data, fetchErr = r.store.FetchArtifact(ctx, name)
		return fetchErr
	})
	if err != nil {
		return nil, apperrors.NewModelLoadError("failed to fetch model artifact "+name, err)
	}

	model, err := DecodeRegressor(data)
	if err != nil {
		return nil, apperrors.NewModelLoadError("failed to decode model artifact "+name, err)
	}

	logger.Info().Str("artifact", name).Msg("model loaded")
	r.models[name] = model
	return model, nil
}
