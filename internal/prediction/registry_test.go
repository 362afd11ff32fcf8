package prediction

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

type countingArtifactStore struct {
	fetches  atomic.Int64
	failures int64 // first N fetches fail; set before use, never mutated
}

func (s *countingArtifactStore) FetchArtifact(_ context.Context, name string) ([]byte, error) {
	if s.fetches.Add(1) <= s.failures {
		return nil, errors.New("artifact store unreachable")
	}
	return []byte(`{"model_type":"linear","intercept":1,"coefficients":[2,3]}`), nil
}

func TestRegistry_LoadsEachModelOnce(t *testing.T) {
	store := &countingArtifactStore{}
	registry := NewRegistry(store, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := registry.PriceModel(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), store.fetches.Load())

	_, err := registry.TimelineModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.fetches.Load())
}

func TestRegistry_ConcurrentFirstLoadFetchesOnce(t *testing.T) {
	store := &countingArtifactStore{}
	registry := NewRegistry(store, 3)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			model, err := registry.PriceModel(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, model)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), store.fetches.Load())
}

func TestRegistry_RetriesTransientFetchFailure(t *testing.T) {
	store := &countingArtifactStore{failures: 2}
	registry := NewRegistry(store, 3)

	model, err := registry.PriceModel(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, model)
	assert.Equal(t, int64(3), store.fetches.Load())
}

func TestRegistry_FailedLoadIsNotCached(t *testing.T) {
	store := &countingArtifactStore{failures: 1}
	registry := NewRegistry(store, 1)

	_, err := registry.PriceModel(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeModelLoad))

	// the next request attempts a fresh load and succeeds
	model, err := registry.PriceModel(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, model)
}

type malformedArtifactStore struct{}

func (malformedArtifactStore) FetchArtifact(context.Context, string) ([]byte, error) {
	return []byte("not a model"), nil
}

func TestRegistry_MalformedArtifact(t *testing.T) {
	registry := NewRegistry(malformedArtifactStore{}, 1)

	_, err := registry.TimelineModel(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeModelLoad))
}
