package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/application/services"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

func floatPtr(v float64) *float64 { return &v }

// stubLabRepo is an in-memory LabRepository for service tests
type stubLabRepo struct {
	labs       map[string]*entities.Lab
	admitErr   error
	admitted   []string
	admitState *entities.AdmissionState
}

func newStubLabRepo(labs ...*entities.Lab) *stubLabRepo {
	repo := &stubLabRepo{labs: map[string]*entities.Lab{}}
	for _, lab := range labs {
		repo.labs[lab.ID] = lab
	}
	return repo
}

func (r *stubLabRepo) Create(_ context.Context, lab *entities.Lab) error {
	r.labs[lab.ID] = lab
	return nil
}

func (r *stubLabRepo) GetByID(_ context.Context, id string) (*entities.Lab, error) {
	lab, ok := r.labs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("lab with id " + id + " not found")
	}
	return lab, nil
}

func (r *stubLabRepo) GetByIDs(_ context.Context, ids []string) ([]*entities.Lab, error) {
	labs := []*entities.Lab{}
	for _, id := range ids {
		if lab, ok := r.labs[id]; ok {
			labs = append(labs, lab)
		}
	}
	return labs, nil
}

func (r *stubLabRepo) ListByType(_ context.Context, labType int) ([]*entities.Lab, error) {
	labs := []*entities.Lab{}
	for _, lab := range r.labs {
		if lab.LabType == labType {
			labs = append(labs, lab)
		}
	}
	return labs, nil
}

func (r *stubLabRepo) AdmitCase(_ context.Context, labID, caseID, serviceType string) (*entities.AdmissionState, error) {
	if r.admitErr != nil {
		return nil, r.admitErr
	}
	r.admitted = append(r.admitted, labID+"/"+caseID+"/"+serviceType)
	if r.admitState != nil {
		return r.admitState, nil
	}

	lab, ok := r.labs[labID]
	if !ok {
		return nil, apperrors.NewNotFoundError("lab with id " + labID + " not found")
	}
	if lab.CaseQueue == nil {
		lab.CaseQueue = map[string]entities.CaseQueueEntry{}
	}
	lab.CaseQueue[caseID] = entities.CaseQueueEntry{ServiceType: serviceType}
	lab.Availability = entities.Availability(lab.EffectiveCapacity(), len(lab.CaseQueue))
	return &entities.AdmissionState{
		LabID:        labID,
		CaseID:       caseID,
		CaseQueue:    lab.CaseQueue,
		Capacity:     lab.EffectiveCapacity(),
		Availability: lab.Availability,
	}, nil
}

// stubSearchRepo is a canned LabSearchRepository
type stubSearchRepo struct {
	ids   []string
	err   error
	calls int
}

func (r *stubSearchRepo) FindByTypeAndService(context.Context, int, string) ([]string, error) {
	r.calls++
	return r.ids, r.err
}

func (r *stubSearchRepo) Index(context.Context, *entities.Lab) error { return nil }
func (r *stubSearchRepo) Delete(context.Context, string) error       { return nil }

func testLab(id string, labType int, serviceIDs ...string) *entities.Lab {
	services := map[string]entities.ServiceOffering{}
	for _, sid := range serviceIDs {
		services[sid] = entities.ServiceOffering{Price: floatPtr(100)}
	}
	return &entities.Lab{
		ID:                id,
		LabType:           labType,
		Capacity:          10,
		Availability:      100,
		CaseQueue:         map[string]entities.CaseQueueEntry{},
		ServicesAvailable: services,
	}
}

func TestMatchingService_FiltersByTypeAndServiceKey(t *testing.T) {
	repo := newStubLabRepo(
		testLab("L1", 1, "5", "6"),
		testLab("L2", 1, "6"),
		testLab("L3", 2, "5"),
	)
	matcher := services.NewMatchingService(repo, nil)

	labs, err := matcher.Match(context.Background(), 1, "5")
	require.NoError(t, err)
	require.Len(t, labs, 1)
	assert.Equal(t, "L1", labs[0].ID)
}

func TestMatchingService_NoMatchIsEmptyNotError(t *testing.T) {
	repo := newStubLabRepo(testLab("L1", 1, "3"))
	matcher := services.NewMatchingService(repo, nil)

	labs, err := matcher.Match(context.Background(), 1, "5")
	require.NoError(t, err)
	assert.Empty(t, labs)
}

func TestMatchingService_ExactKeyMembership(t *testing.T) {
	// "5" must not match a lab that only offers "55".
	repo := newStubLabRepo(testLab("L1", 1, "55"))
	matcher := services.NewMatchingService(repo, nil)

	labs, err := matcher.Match(context.Background(), 1, "5")
	require.NoError(t, err)
	assert.Empty(t, labs)
}

func TestMatchingService_UsesSearchIndexWhenAvailable(t *testing.T) {
	repo := newStubLabRepo(testLab("L1", 1, "5"), testLab("L2", 1, "5"))
	searchRepo := &stubSearchRepo{ids: []string{"L2"}}
	matcher := services.NewMatchingService(repo, searchRepo)

	labs, err := matcher.Match(context.Background(), 1, "5")
	require.NoError(t, err)
	require.Len(t, labs, 1)
	assert.Equal(t, "L2", labs[0].ID)
	assert.Equal(t, 1, searchRepo.calls)
}

func TestMatchingService_FallsBackToCatalogOnIndexError(t *testing.T) {
	repo := newStubLabRepo(testLab("L1", 1, "5"))
	searchRepo := &stubSearchRepo{err: errors.New("typesense down")}
	matcher := services.NewMatchingService(repo, searchRepo)

	labs, err := matcher.Match(context.Background(), 1, "5")
	require.NoError(t, err)
	require.Len(t, labs, 1)
	assert.Equal(t, "L1", labs[0].ID)
}
