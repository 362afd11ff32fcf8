package providers

import (
	"context"
)

// Well-known artifact names. The registry fetches models under these
// fixed logical names; the store decides where the bytes live.
const (
	ArtifactPricingModel  = "pricing_model"
	ArtifactTimelineModel = "timeline_model"
)

// ArtifactProvider defines the interface for the model artifact store
type ArtifactProvider interface {
	// FetchArtifact retrieves a serialized model artifact by name
	FetchArtifact(ctx context.Context, name string) ([]byte, error)
}
