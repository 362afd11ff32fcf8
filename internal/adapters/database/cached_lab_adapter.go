package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
)

// CachedLabAdapter wraps a LabRepository with a read-through cache.
// Admissions write through to the store and drop the cached record, so
// a stale queue snapshot is never served after a successful admit.
type CachedLabAdapter struct {
	adapter repositories.LabRepository
	cache   providers.CacheProvider
}

// NewCachedLabAdapter creates a new cached lab adapter
func NewCachedLabAdapter(adapter repositories.LabRepository, cache providers.CacheProvider) repositories.LabRepository {
	return &CachedLabAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	labByIDTTL    = 120
	labsByTypeTTL = 60
)

func labCacheKey(id string) string {
	return fmt.Sprintf("lab:%s", id)
}

func labsByTypeCacheKey(labType int) string {
	return fmt.Sprintf("labs:type:%d", labType)
}

// Create passes through and leaves the type listing cache to expire
func (a *CachedLabAdapter) Create(ctx context.Context, lab *entities.Lab) error {
	return a.adapter.Create(ctx, lab)
}

// GetByID retrieves a lab by ID with caching
func (a *CachedLabAdapter) GetByID(ctx context.Context, id string) (*entities.Lab, error) {
	cacheKey := labCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var lab entities.Lab
		if err := json.Unmarshal(cached, &lab); err == nil {
			return &lab, nil
		}
		log.Printf("Failed to unmarshal cached lab %s: %v", id, err)
	}

	lab, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(lab); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, labByIDTTL); err != nil {
				log.Printf("Failed to cache lab %s: %v", id, err)
			}
		}
	}()

	return lab, nil
}

// GetByIDs retrieves labs by IDs, reusing the per-lab cache entries
func (a *CachedLabAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Lab, error) {
	if len(ids) == 0 {
		return []*entities.Lab{}, nil
	}

	labs := make([]*entities.Lab, 0, len(ids))
	missing := make([]string, 0)

	for _, id := range ids {
		if cached, err := a.cache.Get(ctx, labCacheKey(id)); err == nil {
			var lab entities.Lab
			if err := json.Unmarshal(cached, &lab); err == nil {
				labs = append(labs, &lab)
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return labs, nil
	}

	fetched, err := a.adapter.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		for _, lab := range fetched {
			if data, err := json.Marshal(lab); err == nil {
				if err := a.cache.Set(bgCtx, labCacheKey(lab.ID), data, labByIDTTL); err != nil {
					log.Printf("Failed to cache lab %s: %v", lab.ID, err)
				}
			}
		}
	}()

	return append(labs, fetched...), nil
}

// ListByType retrieves labs of a type with caching
func (a *CachedLabAdapter) ListByType(ctx context.Context, labType int) ([]*entities.Lab, error) {
	cacheKey := labsByTypeCacheKey(labType)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var labs []*entities.Lab
		if err := json.Unmarshal(cached, &labs); err == nil {
			return labs, nil
		}
	}

	labs, err := a.adapter.ListByType(ctx, labType)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(labs); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, labsByTypeTTL); err != nil {
				log.Printf("Failed to cache labs of type %d: %v", labType, err)
			}
		}
	}()

	return labs, nil
}

// AdmitCase delegates to the underlying store and invalidates the
// cached lab record before returning
func (a *CachedLabAdapter) AdmitCase(ctx context.Context, labID, caseID, serviceType string) (*entities.AdmissionState, error) {
	state, err := a.adapter.AdmitCase(ctx, labID, caseID, serviceType)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Delete(ctx, labCacheKey(labID)); err != nil {
		log.Printf("Failed to invalidate cached lab %s: %v", labID, err)
	}

	return state, nil
}
