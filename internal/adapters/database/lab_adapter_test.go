package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/postgres"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

func setupMockAdapter(t *testing.T) (repositories.LabRepository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewLabAdapter(postgres.NewClientFromDB(mockDB)), mock
}

var labColumns = []string{
	"id", "lab_type", "capacity", "availability",
	"case_queue", "services", "created_at", "updated_at",
}

func TestLabAdapter_GetByID(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	now := time.Now()
	// goqu builds interpolated SQL here, so the lab ID is matched in the
	// query text rather than as a bound arg.
	mock.ExpectQuery(`SELECT .* FROM "labs" WHERE \("id" = 'L1'\)`).
		WillReturnRows(sqlmock.NewRows(labColumns).AddRow(
			"L1", 1, 10, 90.0,
			[]byte(`{"case-1":{"service_type":"5"}}`),
			[]byte(`{"5":{"price":100},"6":{"price":50,"avg_tat":1.5}}`),
			now, now,
		))

	lab, err := adapter.GetByID(context.Background(), "L1")
	require.NoError(t, err)

	assert.Equal(t, "L1", lab.ID)
	assert.Equal(t, 1, lab.LabType)
	assert.Equal(t, 10, lab.Capacity)
	assert.InDelta(t, 90.0, lab.Availability, 1e-9)
	require.Contains(t, lab.CaseQueue, "case-1")
	assert.Equal(t, "5", lab.CaseQueue["case-1"].ServiceType)
	require.Contains(t, lab.ServicesAvailable, "6")
	assert.InDelta(t, 50.0, *lab.ServicesAvailable["6"].Price, 1e-9)
	assert.InDelta(t, 1.5, *lab.ServicesAvailable["6"].AvgTATDays, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabAdapter_GetByID_NotFound(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	mock.ExpectQuery(`SELECT .* FROM "labs" WHERE \("id" = 'ghost'\)`).
		WillReturnRows(sqlmock.NewRows(labColumns))

	_, err := adapter.GetByID(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabAdapter_GetByID_NullJSONBColumns(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM "labs" WHERE \("id" = 'L1'\)`).
		WillReturnRows(sqlmock.NewRows(labColumns).AddRow(
			"L1", 1, 10, 100.0, nil, nil, now, now,
		))

	lab, err := adapter.GetByID(context.Background(), "L1")
	require.NoError(t, err)
	assert.NotNil(t, lab.CaseQueue)
	assert.Empty(t, lab.CaseQueue)
	assert.NotNil(t, lab.ServicesAvailable)
	assert.Empty(t, lab.ServicesAvailable)
}

func TestLabAdapter_ListByType(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM "labs" WHERE \("lab_type" = 1\) ORDER BY "id" ASC`).
		WillReturnRows(sqlmock.NewRows(labColumns).
			AddRow("L1", 1, 10, 100.0, []byte(`{}`), []byte(`{"5":{"price":100}}`), now, now).
			AddRow("L2", 1, 5, 80.0, []byte(`{}`), []byte(`{"6":{"price":50}}`), now, now))

	labs, err := adapter.ListByType(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, labs, 2)
	assert.Equal(t, "L1", labs[0].ID)
	assert.Equal(t, "L2", labs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabAdapter_GetByIDs_EmptyInputSkipsQuery(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	labs, err := adapter.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, labs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabAdapter_AdmitCase(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	mock.ExpectQuery(`UPDATE labs SET`).
		WithArgs("L1", `{"case-1":{"service_type":"5"}}`, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"case_queue", "capacity", "availability"}).AddRow(
			[]byte(`{"case-1":{"service_type":"5"}}`), 10, 90.0,
		))

	state, err := adapter.AdmitCase(context.Background(), "L1", "case-1", "5")
	require.NoError(t, err)

	assert.Equal(t, "L1", state.LabID)
	assert.Equal(t, "case-1", state.CaseID)
	assert.Equal(t, 10, state.Capacity)
	assert.InDelta(t, 90.0, state.Availability, 1e-9)
	require.Contains(t, state.CaseQueue, "case-1")
	assert.Equal(t, "5", state.CaseQueue["case-1"].ServiceType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabAdapter_AdmitCase_UnknownLab(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	mock.ExpectQuery(`UPDATE labs SET`).
		WithArgs("ghost", `{"case-1":{"service_type":"5"}}`, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"case_queue", "capacity", "availability"}))

	_, err := adapter.AdmitCase(context.Background(), "ghost", "case-1", "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestLabAdapter_Create(t *testing.T) {
	adapter, mock := setupMockAdapter(t)

	price := 100.0
	lab := &entities.Lab{
		ID:           "L1",
		LabType:      1,
		Capacity:     10,
		Availability: 100,
		ServicesAvailable: map[string]entities.ServiceOffering{
			"5": {Price: &price},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO "labs"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), lab)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
