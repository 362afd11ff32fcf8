package services

import (
	"context"
	"log"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
)

// MatchingService filters the lab catalog by test type and service
type MatchingService struct {
	repo       repositories.LabRepository
	searchRepo repositories.LabSearchRepository
}

// NewMatchingService creates a new matching service
func NewMatchingService(repo repositories.LabRepository, searchRepo repositories.LabSearchRepository) *MatchingService {
	return &MatchingService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// Match returns all labs whose type equals labType and whose service
// catalog contains serviceID as an exact key. No match is an empty
// result, not an error. The search index is used when available,
// falling back to a catalog scan.
func (s *MatchingService) Match(ctx context.Context, labType int, serviceID string) ([]*entities.Lab, error) {
	if s.searchRepo != nil {
		ids, err := s.searchRepo.FindByTypeAndService(ctx, labType, serviceID)
		if err == nil {
			return s.repo.GetByIDs(ctx, ids)
		}
		// Index trouble should not take matching down.
		log.Printf("Warning: search index lookup failed, falling back to catalog scan: %v", err)
	}

	labs, err := s.repo.ListByType(ctx, labType)
	if err != nil {
		return nil, err
	}

	matched := []*entities.Lab{}
	for _, lab := range labs {
		if lab.HasService(serviceID) {
			matched = append(matched, lab)
		}
	}

	return matched, nil
}
