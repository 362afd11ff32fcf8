package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/postgres"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

// LabAdapter implements the LabRepository interface
type LabAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLabAdapter creates a new lab adapter
func NewLabAdapter(client *postgres.Client) repositories.LabRepository {
	return &LabAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new lab record
func (a *LabAdapter) Create(ctx context.Context, lab *entities.Lab) error {
	caseQueue, err := json.Marshal(queueOrEmpty(lab.CaseQueue))
	if err != nil {
		return apperrors.NewInternalError("failed to encode case queue", err)
	}
	services, err := json.Marshal(servicesOrEmpty(lab.ServicesAvailable))
	if err != nil {
		return apperrors.NewInternalError("failed to encode services", err)
	}

	record := goqu.Record{
		"id":           lab.ID,
		"lab_type":     lab.LabType,
		"capacity":     lab.EffectiveCapacity(),
		"availability": lab.Availability,
		"case_queue":   string(caseQueue),
		"services":     string(services),
		"created_at":   lab.CreatedAt,
		"updated_at":   lab.UpdatedAt,
	}

	query, args, err := a.db.Insert("labs").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create lab", err)
	}

	return nil
}

// GetByID retrieves a lab by ID
func (a *LabAdapter) GetByID(ctx context.Context, id string) (*entities.Lab, error) {
	query, args, err := a.db.Select(
		"id", "lab_type", "capacity", "availability",
		"case_queue", "services", "created_at", "updated_at",
	).From("labs").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	lab, err := scanLab(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("lab with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get lab", err)
	}

	return lab, nil
}

// GetByIDs retrieves multiple labs by their IDs
func (a *LabAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Lab, error) {
	if len(ids) == 0 {
		return []*entities.Lab{}, nil
	}

	query, args, err := a.db.Select(
		"id", "lab_type", "capacity", "availability",
		"case_queue", "services", "created_at", "updated_at",
	).From("labs").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryLabs(ctx, query, args...)
}

// ListByType retrieves all labs of the given type
func (a *LabAdapter) ListByType(ctx context.Context, labType int) ([]*entities.Lab, error) {
	query, args, err := a.db.Select(
		"id", "lab_type", "capacity", "availability",
		"case_queue", "services", "created_at", "updated_at",
	).From("labs").
		Where(goqu.Ex{"lab_type": labType}).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryLabs(ctx, query, args...)
}

// AdmitCase admits a case into a lab's queue in one atomic statement.
// The JSONB merge upserts case_queue[caseID] (re-admission overwrites in
// place) and availability is recomputed from the merged queue size, so
// two concurrent admissions on the same lab cannot drop each other's
// entry the way a read-modify-write would.
func (a *LabAdapter) AdmitCase(ctx context.Context, labID, caseID, serviceType string) (*entities.AdmissionState, error) {
	patch, err := json.Marshal(map[string]entities.CaseQueueEntry{
		caseID: {ServiceType: serviceType},
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode case entry", err)
	}

	query := `
		UPDATE labs SET
			case_queue = COALESCE(case_queue, '{}'::jsonb) || $2::jsonb,
			availability = ROUND(
				GREATEST(
					0,
					(GREATEST(capacity, 1) - (
						SELECT COUNT(*) FROM jsonb_object_keys(COALESCE(case_queue, '{}'::jsonb) || $2::jsonb)
					))::numeric / GREATEST(capacity, 1) * 100
				), 2),
			updated_at = $3
		WHERE id = $1
		RETURNING case_queue, capacity, availability
	`

	var (
		rawQueue     []byte
		capacity     int
		availability float64
	)
	err = a.client.DB().QueryRowContext(ctx, query, labID, string(patch), time.Now()).Scan(
		&rawQueue,
		&capacity,
		&availability,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("lab with id %s not found", labID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to admit case", err)
	}

	queue := map[string]entities.CaseQueueEntry{}
	if len(rawQueue) > 0 {
		if err := json.Unmarshal(rawQueue, &queue); err != nil {
			return nil, apperrors.NewInternalError("failed to decode case queue", err)
		}
	}

	return &entities.AdmissionState{
		LabID:        labID,
		CaseID:       caseID,
		CaseQueue:    queue,
		Capacity:     capacity,
		Availability: availability,
	}, nil
}

func (a *LabAdapter) queryLabs(ctx context.Context, query string, args ...interface{}) ([]*entities.Lab, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query labs", err)
	}
	defer rows.Close()

	labs := []*entities.Lab{}
	for rows.Next() {
		lab, err := scanLab(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan lab", err)
		}
		labs = append(labs, lab)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate labs", err)
	}

	return labs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLab(row rowScanner) (*entities.Lab, error) {
	lab := &entities.Lab{}
	var rawQueue, rawServices []byte

	err := row.Scan(
		&lab.ID,
		&lab.LabType,
		&lab.Capacity,
		&lab.Availability,
		&rawQueue,
		&rawServices,
		&lab.CreatedAt,
		&lab.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lab.CaseQueue = map[string]entities.CaseQueueEntry{}
	if len(rawQueue) > 0 {
		if err := json.Unmarshal(rawQueue, &lab.CaseQueue); err != nil {
			return nil, fmt.Errorf("failed to decode case queue: %w", err)
		}
	}

	lab.ServicesAvailable = map[string]entities.ServiceOffering{}
	if len(rawServices) > 0 {
		if err := json.Unmarshal(rawServices, &lab.ServicesAvailable); err != nil {
			return nil, fmt.Errorf("failed to decode services: %w", err)
		}
	}

	return lab, nil
}

func queueOrEmpty(q map[string]entities.CaseQueueEntry) map[string]entities.CaseQueueEntry {
	if q == nil {
		return map[string]entities.CaseQueueEntry{}
	}
	return q
}

func servicesOrEmpty(s map[string]entities.ServiceOffering) map[string]entities.ServiceOffering {
	if s == nil {
		return map[string]entities.ServiceOffering{}
	}
	return s
}
