package artifacts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/postgres"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

// DatabaseAdapter serves model artifacts from the model_artifacts table
type DatabaseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDatabaseAdapter creates a new database-backed artifact provider
func NewDatabaseAdapter(client *postgres.Client) *DatabaseAdapter {
	return &DatabaseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ providers.ArtifactProvider = (*DatabaseAdapter)(nil)

// FetchArtifact retrieves a serialized model artifact by name
func (a *DatabaseAdapter) FetchArtifact(ctx context.Context, name string) ([]byte, error) {
	query, args, err := a.db.Select("data").
		From("model_artifacts").
		Where(goqu.Ex{"name": name}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var data []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("model artifact %s not found", name))
	}
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch model artifact", err)
	}

	return data, nil
}

// StoreArtifact upserts a model artifact, used by the seeding utility
func (a *DatabaseAdapter) StoreArtifact(ctx context.Context, name string, data []byte) error {
	// JSONB column; a []byte value would render as a bytea literal.
	record := goqu.Record{
		"name":       name,
		"data":       string(data),
		"updated_at": time.Now(),
	}

	query, args, err := a.db.Insert("model_artifacts").
		Rows(record).
		OnConflict(goqu.DoUpdate("name", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to store model artifact", err)
	}

	return nil
}
