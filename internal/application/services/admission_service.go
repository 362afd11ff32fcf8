package services

import (
	"context"
	"log"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/observability"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

// AdmissionService admits cases into lab queues and keeps availability
// current
type AdmissionService struct {
	repo     repositories.LabRepository
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(repo repositories.LabRepository, eventBus providers.EventBus, metrics *observability.Metrics) *AdmissionService {
	return &AdmissionService{
		repo:     repo,
		eventBus: eventBus,
		metrics:  metrics,
	}
}

// Admit upserts the case into the lab's queue and returns the updated
// queue snapshot. Admission is idempotent per case ID: re-submitting an
// existing case overwrites its entry instead of duplicating it. The
// queue write and the availability recompute happen atomically at the
// storage boundary.
func (s *AdmissionService) Admit(ctx context.Context, labID, caseID, serviceType string) (*entities.AdmissionState, error) {
	if labID == "" || caseID == "" {
		return nil, apperrors.NewValidationError("lab_id and case_id are required")
	}

	state, err := s.repo.AdmitCase(ctx, labID, caseID, serviceType)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AdmissionCount.Add(ctx, 1)
	}

	// Event delivery is best effort; a pub/sub hiccup must not fail an
	// admission that already committed.
	if s.eventBus != nil {
		event := entities.NewQueueEvent(labID, entities.QueueEventTypeCaseAdmitted, state)
		if err := s.eventBus.Publish(ctx, providers.GetLabChannel(labID), event); err != nil {
			log.Printf("Warning: failed to publish queue event for lab %s: %v", labID, err)
		}
		if err := s.eventBus.Publish(ctx, providers.EventChannelLabUpdates, event); err != nil {
			log.Printf("Warning: failed to publish queue event for lab %s: %v", labID, err)
		}
	}

	return state, nil
}
