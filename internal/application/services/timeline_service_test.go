package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/application/services"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

func newTimelineFixture(store *stubArtifactStore, labs ...*entities.Lab) *services.TimelineService {
	repo := newStubLabRepo(labs...)
	matcher := services.NewMatchingService(repo, nil)
	registry := testRegistry(store)
	pricing := services.NewPricingService(matcher, registry)
	return services.NewTimelineService(matcher, pricing, registry)
}

func TestTimelineService_TurnaroundDependsOnDynamicPrice(t *testing.T) {
	lab := testLab("L1", 1, "5")
	timeline := newTimelineFixture(&stubArtifactStore{}, lab)

	quotes, err := timeline.SearchWithTimeline(context.Background(), 1, "5")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Len(t, quotes[0].Services, 1)

	sq := quotes[0].Services[0]
	// Price stage runs first; its output feeds the turnaround model.
	assert.InDelta(t, 120.0, sq.DynamicPrice, 1e-9)
	require.NotNil(t, sq.TimelineTAT)
	assert.InDelta(t, 0.01*sq.DynamicPrice, *sq.TimelineTAT, 1e-9)
}

func TestTimelineService_BothModelsLoaded(t *testing.T) {
	store := &stubArtifactStore{}
	timeline := newTimelineFixture(store, testLab("L1", 1, "5"))

	_, err := timeline.SearchWithTimeline(context.Background(), 1, "5")
	require.NoError(t, err)
	assert.Equal(t, 1, store.fetches["pricing_model"])
	assert.Equal(t, 1, store.fetches["timeline_model"])
}

func TestTimelineService_SkipsServiceWithoutBasePrice(t *testing.T) {
	lab := testLab("L1", 1, "5")
	lab.ServicesAvailable["broken"] = entities.ServiceOffering{}
	timeline := newTimelineFixture(&stubArtifactStore{}, lab)

	quotes, err := timeline.SearchWithTimeline(context.Background(), 1, "5")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Len(t, quotes[0].Services, 1)
	assert.Equal(t, "5", quotes[0].Services[0].ServiceID)
}

func TestTimelineService_NoMatchReturnsEmpty(t *testing.T) {
	store := &stubArtifactStore{}
	timeline := newTimelineFixture(store, testLab("L1", 2, "5"))

	quotes, err := timeline.SearchWithTimeline(context.Background(), 1, "5")
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Zero(t, store.fetches["timeline_model"])
}

func TestTimelineService_TimelineModelFailurePropagates(t *testing.T) {
	store := &stubArtifactStore{artifacts: map[string][]byte{
		"pricing_model":  []byte(`{"model_type":"linear","intercept":1.2,"coefficients":[0,0,0,0,0,0,0,0,0]}`),
		"timeline_model": []byte(`not json`),
	}}
	timeline := newTimelineFixture(store, testLab("L1", 1, "5"))

	_, err := timeline.SearchWithTimeline(context.Background(), 1, "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeModelLoad))
}
