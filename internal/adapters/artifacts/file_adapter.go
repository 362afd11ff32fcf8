package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
	apperrors "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/errors"
)

// FileAdapter serves model artifacts from a local directory, one
// <name>.json file per artifact. Meant for development and tests where
// no database is available.
type FileAdapter struct {
	dir string
}

// NewFileAdapter creates a new filesystem artifact provider
func NewFileAdapter(dir string) *FileAdapter {
	return &FileAdapter{dir: dir}
}

var _ providers.ArtifactProvider = (*FileAdapter)(nil)

// FetchArtifact retrieves a serialized model artifact by name
func (a *FileAdapter) FetchArtifact(_ context.Context, name string) ([]byte, error) {
	path := filepath.Join(a.dir, name+".json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("model artifact %s not found", name))
	}
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read model artifact", err)
	}

	return data, nil
}
