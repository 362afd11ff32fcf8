package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
	tsclient "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements lab matching against a Typesense index.
// The index stores only what the matcher filters on; full lab records
// are hydrated from the primary repository using the returned IDs.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements LabSearchRepository
var _ repositories.LabSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the labs collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(tsclient.LabsCollection).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: tsclient.LabsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "lab_type", Type: "int32", Facet: pointer.True()},
			{Name: "service_ids", Type: "string[]"},
			{Name: "capacity", Type: "int32"},
			{Name: "availability", Type: "float"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index indexes a lab
func (a *TypesenseAdapter) Index(ctx context.Context, lab *entities.Lab) error {
	serviceIDs := make([]string, 0, len(lab.ServicesAvailable))
	for id := range lab.ServicesAvailable {
		serviceIDs = append(serviceIDs, id)
	}

	document := map[string]interface{}{
		"id":           lab.ID,
		"lab_type":     lab.LabType,
		"service_ids":  serviceIDs,
		"capacity":     lab.EffectiveCapacity(),
		"availability": lab.Availability,
		"created_at":   lab.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(tsclient.LabsCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index lab: %w", err)
	}

	return nil
}

// Delete removes a lab from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.LabsCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete lab from index: %w", err)
	}
	return nil
}

// FindByTypeAndService returns IDs of labs of the given type offering
// the given service
func (a *TypesenseAdapter) FindByTypeAndService(ctx context.Context, labType int, serviceID string) ([]string, error) {
	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("id"),
		FilterBy: pointer.String(fmt.Sprintf("lab_type:=%d && service_ids:=%s", labType, serviceID)),
		PerPage:  pointer.Int(250),
	}

	result, err := a.client.Client().Collection(tsclient.LabsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search labs: %w", err)
	}

	ids := []string{}
	if result.Hits == nil {
		return ids, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document
		if id, ok := doc["id"].(string); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
