package repositories

import (
	"context"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
)

// LabRepository defines the interface for lab catalog and queue operations
type LabRepository interface {
	// Create creates a new lab record
	Create(ctx context.Context, lab *entities.Lab) error

	// GetByID retrieves a lab by ID
	GetByID(ctx context.Context, id string) (*entities.Lab, error)

	// GetByIDs retrieves multiple labs by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Lab, error)

	// ListByType retrieves all labs of the given type
	ListByType(ctx context.Context, labType int) ([]*entities.Lab, error)

	// AdmitCase upserts case_queue[caseID] and recomputes availability
	// from the merged queue size in a single atomic operation.
	// Re-admitting an existing caseID overwrites the entry in place.
	AdmitCase(ctx context.Context, labID, caseID, serviceType string) (*entities.AdmissionState, error)
}

// LabSearchRepository defines the interface for the lab search index
// (e.g. Typesense). It returns matching lab IDs; full records are
// hydrated from the LabRepository.
type LabSearchRepository interface {
	// FindByTypeAndService returns IDs of labs of the given type that
	// offer the given service
	FindByTypeAndService(ctx context.Context, labType int, serviceID string) ([]string, error)

	// Index indexes a lab
	Index(ctx context.Context, lab *entities.Lab) error

	// Delete removes a lab from the index
	Delete(ctx context.Context, id string) error
}
